// Package session ties a set of features to one target process.
package session

import (
	"errors"
	"fmt"
	"sort"

	"gofreeze/feature"
	"gofreeze/ticker"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

// ErrUnknownFeature is returned when a feature name is not in the session.
var ErrUnknownFeature = errors.New("unknown feature")

// Context is the module base and memory every feature of a session uses.
type Context = feature.Target

// Session owns the features built for one target.
type Session struct {
	ctx      Context
	sched    ticker.Scheduler
	features map[string]*feature.Feature
	log      *logger.Logger
}

// New builds one feature per definition. Names must be unique.
func New(ctx Context, sched ticker.Scheduler, report feature.Reporter, defs ...feature.Definition) (*Session, error) {
	s := &Session{
		ctx:      ctx,
		sched:    sched,
		features: make(map[string]*feature.Feature, len(defs)),
		log:      logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "session")),
	}

	for _, def := range defs {
		if _, ok := s.features[def.Name]; ok {
			return nil, fmt.Errorf("duplicate feature name %q", def.Name)
		}

		f, err := feature.New(ctx, sched, report, def)
		if err != nil {
			return nil, err
		}
		s.features[def.Name] = f
	}

	s.log.Infoln("Session ready with", len(s.features), "features, base", ctx.Base.ToString())

	return s, nil
}

// Context returns the session's base address and memory.
func (s *Session) Context() Context {
	return s.ctx
}

// Feature returns the named feature.
func (s *Session) Feature(name string) (*feature.Feature, error) {
	f, ok := s.features[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFeature, name)
	}
	return f, nil
}

// Names returns the feature names in sorted order.
func (s *Session) Names() []string {
	names := make([]string, 0, len(s.features))
	for name := range s.features {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Statuses returns a snapshot of every feature, sorted by name.
func (s *Session) Statuses() []feature.Status {
	names := s.Names()
	out := make([]feature.Status, len(names))
	for i, name := range names {
		out[i] = s.features[name].Status()
	}
	return out
}

// StopAll shuts down every feature, restoring disabled values where it can.
// Restore failures are joined into the returned error.
func (s *Session) StopAll() error {
	var errs []error
	for _, name := range s.Names() {
		if err := s.features[name].Shutdown(); err != nil {
			errs = append(errs, err)
		}
	}

	s.log.Infoln("All features stopped")
	return errors.Join(errs...)
}
