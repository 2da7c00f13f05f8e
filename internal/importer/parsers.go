package importer

import (
	"fmt"

	"github.com/openjournals/backissue/internal/parser"
	"github.com/openjournals/backissue/internal/parser/aplusplus"
	"github.com/openjournals/backissue/internal/parser/jats"
)

// buildDispatcher assembles the parser dispatcher from a list of parser
// names in probe priority order.
func buildDispatcher(order []string) (*parser.Dispatcher, error) {
	available := map[string]parser.Parser{
		"aplusplus": aplusplus.New(),
		"jats":      jats.New(),
	}

	parsers := make([]parser.Parser, 0, len(order))
	for _, name := range order {
		p, ok := available[name]
		if !ok {
			return nil, fmt.Errorf("unknown parser %q", name)
		}
		parsers = append(parsers, p)
	}
	if len(parsers) == 0 {
		return nil, fmt.Errorf("no parsers configured")
	}
	return parser.NewDispatcher(parsers...), nil
}
