package parser

import "fmt"

// Dispatcher tries registered parsers against a document in a fixed
// priority order and returns the first that matches.
type Dispatcher struct {
	parsers []Parser
}

// NewDispatcher creates a dispatcher with the given priority order.
func NewDispatcher(parsers ...Parser) *Dispatcher {
	return &Dispatcher{parsers: parsers}
}

// Parsers returns the registered parsers in priority order.
func (d *Dispatcher) Parsers() []Parser {
	return d.parsers
}

// Match probes each parser in order and returns the first match. A probe
// mismatch is not an error; only exhaustion of the whole list yields
// ErrNoSuitableParser.
func (d *Dispatcher) Match(doc *Document) (Parser, error) {
	for _, p := range d.parsers {
		if res := p.Probe(doc); res.Matched {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNoSuitableParser, doc.Path)
}
