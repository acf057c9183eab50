package earley

// close runs predict and complete over col until no new items appear. When
// next is non-nil, items expecting a terminal are also scanned into it.
//
// The loop walks col.items by index so items appended while it runs are
// visited too; Column.Add ignores duplicates, which bounds the work.
func (p *Parser) close(col, next *Column) error {
	for i := 0; i < len(col.items); i++ {
		item := col.items[i]
		sym, ok := item.Peek()
		switch {
		case !ok:
			p.complete(item, col)
		case sym.IsTerminal():
			if next == nil {
				continue
			}
			if err := p.scan(item, next); err != nil {
				return err
			}
		default:
			p.predict(item, sym.Name(), col)
		}
	}
	return nil
}

// predict adds a fresh item for every rule of name. If name derives ε the
// waiting item is also advanced in place (Aycock & Horspool).
func (p *Parser) predict(item Item, name string, col *Column) {
	for _, r := range p.grammar.RulesFor(name) {
		col.Add(NewItem(r, 0, col.index))
	}
	if p.grammar.Nullable(name) {
		col.Add(item.Advance())
	}
}

// complete advances every item in the origin column that was waiting for the
// nonterminal item has just finished.
func (p *Parser) complete(item Item, col *Column) {
	lhs := item.rule.LHS
	origin := p.chart.columns[item.origin]
	for j := 0; j < len(origin.items); j++ {
		waiting := origin.items[j]
		sym, ok := waiting.Peek()
		if !ok || sym.IsTerminal() || sym.Name() != lhs {
			continue
		}
		col.Add(waiting.Advance())
	}
}

// scan moves item into next if its terminal accepts next's token.
func (p *Parser) scan(item Item, next *Column) error {
	sym, _ := item.Peek()
	ok, err := sym.Match(next.token)
	if err != nil {
		return err
	}
	if ok {
		next.Add(item.Advance())
	}
	return nil
}

// scanInto scans every terminal-expecting item of an already closed column.
func (p *Parser) scanInto(prev, next *Column) error {
	for _, item := range prev.items {
		sym, ok := item.Peek()
		if !ok || !sym.IsTerminal() {
			continue
		}
		if err := p.scan(item, next); err != nil {
			return err
		}
	}
	return nil
}
