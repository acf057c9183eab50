// Package lsp serves grammar diagnostics and completions to editors over
// the Language Server Protocol.
package lsp

import (
	"sync"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/dhamidi/earley/config"
)

const lsName = "earley"

type Server struct {
	cfg     config.Config
	handler protocol.Handler
	server  *server.Server
	version string
	log     commonlog.Logger

	mu      sync.Mutex
	lang    *Language
	loadErr error
	docs    map[string]string
	notify  glsp.NotifyFunc
	watcher *GrammarWatcher
}

func NewServer(cfg config.Config, version string) *Server {
	ls := &Server{
		cfg:     cfg,
		version: version,
		log:     commonlog.GetLogger("lsp"),
		docs:    make(map[string]string),
	}

	ls.handler = protocol.Handler{
		Initialize:             ls.initialize,
		Initialized:            ls.initialized,
		Shutdown:               ls.shutdown,
		SetTrace:               ls.setTrace,
		TextDocumentDidOpen:    ls.textDocumentDidOpen,
		TextDocumentDidChange:  ls.textDocumentDidChange,
		TextDocumentDidClose:   ls.textDocumentDidClose,
		TextDocumentDidSave:    ls.textDocumentDidSave,
		TextDocumentCompletion: ls.textDocumentCompletion,
	}

	ls.server = server.NewServer(&ls.handler, lsName, false)

	return ls
}

func (ls *Server) RunStdio() error {
	return ls.server.RunStdio()
}

// reload loads the grammar again. Failures are kept and reported on every
// document until a later reload succeeds.
func (ls *Server) reload() {
	lang, err := LoadLanguage(ls.cfg)
	if err != nil {
		ls.log.Errorf("load grammar %s: %s", ls.cfg.Grammar, err)
	} else {
		ls.log.Infof("loaded grammar %s", ls.cfg.Grammar)
	}
	ls.lang, ls.loadErr = lang, err
}

func (ls *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	ls.mu.Lock()
	ls.reload()
	ls.mu.Unlock()

	capabilities := ls.handler.CreateServerCapabilities()

	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKindPtr(protocol.TextDocumentSyncKindFull),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}

	capabilities.CompletionProvider = &protocol.CompletionOptions{
		TriggerCharacters: []string{" "},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &ls.version,
		},
	}, nil
}

func (ls *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	ls.notify = ctx.Notify
	if ls.cfg.Grammar != "" && ls.watcher == nil {
		ls.watcher = NewGrammarWatcher(ls.cfg.Grammar, ls.grammarChanged)
		ls.watcher.Start()
	}
	return nil
}

func (ls *Server) grammarChanged() {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	ls.reload()
	if ls.notify == nil {
		return
	}
	for uri := range ls.docs {
		ls.publish(ls.notify, uri)
	}
}

func (ls *Server) shutdown(ctx *glsp.Context) error {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	if ls.watcher != nil {
		ls.watcher.Stop()
		ls.watcher = nil
	}
	return nil
}

func (ls *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	ls.docs[params.TextDocument.URI] = params.TextDocument.Text
	ls.publish(ctx.Notify, params.TextDocument.URI)
	return nil
}

func (ls *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}
	change := params.ContentChanges[len(params.ContentChanges)-1]
	textChange, ok := change.(protocol.TextDocumentContentChangeEventWhole)
	if !ok {
		return nil
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	ls.docs[params.TextDocument.URI] = textChange.Text
	ls.publish(ctx.Notify, params.TextDocument.URI)
	return nil
}

func (ls *Server) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	delete(ls.docs, params.TextDocument.URI)
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

func (ls *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	if params.Text == nil {
		return nil
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	ls.docs[params.TextDocument.URI] = *params.Text
	ls.publish(ctx.Notify, params.TextDocument.URI)
	return nil
}

func (ls *Server) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	text, ok := ls.docs[params.TextDocument.URI]
	if !ok || ls.lang == nil {
		return nil, nil
	}

	at := Point{Line: int(params.Position.Line), Column: int(params.Position.Character)}
	labels, err := ls.lang.Complete(text, at)
	if err != nil {
		ls.log.Warningf("complete %s: %s", params.TextDocument.URI, err)
		return nil, nil
	}
	if len(labels) == 0 {
		return nil, nil
	}

	kind := protocol.CompletionItemKindKeyword
	items := make([]protocol.CompletionItem, len(labels))
	for i, label := range labels {
		items[i] = protocol.CompletionItem{
			Label: label,
			Kind:  &kind,
		}
	}
	return items, nil
}

// publish checks the document at uri and sends its diagnostics. The caller
// holds ls.mu.
func (ls *Server) publish(notify glsp.NotifyFunc, uri string) {
	var problems []Problem
	switch {
	case ls.lang == nil:
		msg := "no grammar loaded"
		if ls.loadErr != nil {
			msg = ls.loadErr.Error()
		}
		problems = []Problem{{Message: msg}}
	default:
		var err error
		problems, err = ls.lang.Check(ls.docs[uri])
		if err != nil {
			ls.log.Warningf("check %s: %s", uri, err)
			problems = []Problem{{Message: err.Error()}}
		}
	}

	notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics(problems),
	})
}

func diagnostics(problems []Problem) []protocol.Diagnostic {
	severity := protocol.DiagnosticSeverityError
	source := lsName
	out := make([]protocol.Diagnostic, len(problems))
	for i, p := range problems {
		out[i] = protocol.Diagnostic{
			Range: protocol.Range{
				Start: position(p.Start),
				End:   position(p.End),
			},
			Severity: &severity,
			Source:   &source,
			Message:  p.Message,
		}
	}
	return out
}

func position(p Point) protocol.Position {
	return protocol.Position{
		Line:      protocol.UInteger(p.Line),
		Character: protocol.UInteger(p.Column),
	}
}

func boolPtr(b bool) *bool {
	return &b
}

func syncKindPtr(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
