package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
	"github.com/tliron/commonlog"
	"golang.org/x/exp/ebnf"

	"github.com/dhamidi/earley/bnf"
	"github.com/dhamidi/earley/config"
	"github.com/dhamidi/earley/ebnflex"
	"github.com/dhamidi/earley/grammar"

	_ "github.com/tliron/commonlog/simple"
)

// options holds the flags shared by every command and the configuration
// they resolve to.
type options struct {
	configPath string
	grammar    string
	start      string
	verbose    int

	cfg config.Config
	log commonlog.Logger
}

func (o *options) register(fs *pflag.FlagSet) {
	fs.StringVar(&o.configPath, "config", config.DefaultPath, "configuration file")
	fs.StringVarP(&o.grammar, "grammar", "g", "", "EBNF grammar file (overrides the configuration)")
	fs.StringVarP(&o.start, "start", "s", "", "start production (defaults to the first syntactic production)")
	fs.CountVarP(&o.verbose, "verbose", "v", "increase log verbosity")
}

// setup loads the configuration, applies flag overrides and configures
// logging. A missing configuration file is only an error when --config was
// given explicitly.
func (o *options) setup(fs *pflag.FlagSet) error {
	var err error
	if fs.Changed("config") {
		o.cfg, err = config.Load(o.configPath)
	} else {
		o.cfg, err = config.LoadOptional(o.configPath)
	}
	if err != nil {
		return err
	}

	if o.grammar != "" {
		o.cfg.Grammar = o.grammar
	}
	if o.start != "" {
		o.cfg.Start = o.start
	}

	verbosity := o.cfg.Log.Verbosity
	if o.verbose > verbosity {
		verbosity = o.verbose
	}
	var path *string
	if o.cfg.Log.File != "" {
		path = &o.cfg.Log.File
	}
	commonlog.Configure(verbosity, path)
	o.log = commonlog.GetLogger("cli")
	o.log.Debugf("grammar %q, start %q", o.cfg.Grammar, o.cfg.Start)
	return nil
}

// load reads and lowers the configured grammar.
func (o *options) load() (*grammar.Grammar, ebnf.Grammar, error) {
	if err := o.cfg.Validate(); err != nil {
		return nil, nil, err
	}
	g, src, err := bnf.LoadFile(o.cfg.Grammar, o.cfg.Start)
	if err != nil {
		return nil, nil, fmt.Errorf("load grammar: %w", err)
	}
	return g, src, nil
}

// tokens returns args as tokens, or the tokenized contents of input when
// args is empty. An input of "-" reads standard input.
func (o *options) tokens(src ebnf.Grammar, args []string, input string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	if input == "" {
		return nil, nil
	}

	var data []byte
	var err error
	if input == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(input)
	}
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	toks, err := ebnflex.Scan(src, data, input)
	if err != nil {
		return nil, fmt.Errorf("tokenize %s: %w", input, err)
	}
	return ebnflex.Literals(toks, o.cfg.Skip...), nil
}
