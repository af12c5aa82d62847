package llm

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/sandevgo/kontext/internal/core"
)

type signalWire struct {
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

type bundleWire struct {
	Location  signalWire `json:"location"`
	Time      signalWire `json:"time"`
	Topic     signalWire `json:"topic"`
	Intent    signalWire `json:"intent"`
	Keywords  []string   `json:"keywords"`
	Sentiment string     `json:"sentiment"`
}

// parseSignalBundle tolerates chat around the payload: it takes the
// first balanced JSON object in the response.
func parseSignalBundle(raw string) (*core.SignalBundle, error) {
	obj, err := extractJSONObject(raw)
	if err != nil {
		return nil, err
	}

	var wire bundleWire
	if err := json.Unmarshal([]byte(obj), &wire); err != nil {
		return nil, fmt.Errorf("decode signals: %w", err)
	}

	bundle := &core.SignalBundle{
		Signals:   make(map[core.ContextType]core.Signal, 4),
		Keywords:  wire.Keywords,
		Sentiment: wire.Sentiment,
	}
	for t, w := range map[core.ContextType]signalWire{
		core.TypeLocation: wire.Location,
		core.TypeTime:     wire.Time,
		core.TypeTopic:    wire.Topic,
		core.TypeIntent:   wire.Intent,
	} {
		if w.Confidence <= 0 || w.Value == "" {
			continue
		}
		if w.Confidence > 1 {
			w.Confidence = 1
		}
		bundle.Signals[t] = core.Signal{Value: w.Value, Confidence: w.Confidence}
	}
	return bundle, nil
}

// parseScore reads a 0-100 rating and normalizes it to [0, 1].
func parseScore(raw string) (float64, error) {
	field := strings.TrimSpace(raw)
	if i := strings.IndexFunc(field, func(r rune) bool {
		return (r < '0' || r > '9') && r != '.'
	}); i > 0 {
		field = field[:i]
	}

	v, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return 0, fmt.Errorf("parse score %q: %w", raw, err)
	}

	v /= 100
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return v, nil
}

func extractJSONObject(raw string) (string, error) {
	start := strings.IndexByte(raw, '{')
	if start < 0 {
		return "", fmt.Errorf("no JSON object in %q", raw)
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		c := raw[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return raw[start : i+1], nil
			}
		}
	}
	return "", fmt.Errorf("unbalanced JSON object in %q", raw)
}
