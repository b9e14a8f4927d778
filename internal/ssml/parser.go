package ssml

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// ErrParse indicates malformed or unsupported markup.
var ErrParse = errors.New("ssml parse error")

const (
	supportedVersion = "0.1"
	defaultBreak     = 200 * time.Millisecond
)

// Parse turns SSML v0.1 markup into an ordered segment sequence. Text inside
// <voice> and <prosody> elements inherits their attributes; <break> elements
// become timed pauses. The segment order follows document order exactly.
func Parse(markup string) ([]Segment, error) {
	decoder := xml.NewDecoder(strings.NewReader(markup))

	var (
		segments []Segment
		stack    []Params
		depth    int
		sawRoot  bool
	)

	current := func() Params {
		if len(stack) == 0 {
			return NewParams()
		}
		return stack[len(stack)-1]
	}

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if depth == 0 {
				if t.Name.Local != "speak" {
					return nil, fmt.Errorf("%w: root element must be <speak>, got <%s>", ErrParse, t.Name.Local)
				}
				if v := attr(t, "version"); v != "" && v != supportedVersion {
					return nil, fmt.Errorf("%w: unsupported version %q", ErrParse, v)
				}
				sawRoot = true
				stack = append(stack, NewParams())
				depth++
				continue
			}

			switch t.Name.Local {
			case "voice", "prosody":
				stack = append(stack, mergeAttrs(current(), t))
			case "break":
				d, err := breakDuration(attr(t, "time"))
				if err != nil {
					return nil, err
				}
				segments = append(segments, BreakSegment{Duration: d})
				stack = append(stack, current())
			default:
				return nil, fmt.Errorf("%w: unknown element <%s>", ErrParse, t.Name.Local)
			}
			depth++

		case xml.EndElement:
			depth--
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}

		case xml.CharData:
			if depth == 0 {
				continue
			}
			text := strings.TrimSpace(string(t))
			if text == "" {
				continue
			}
			segments = append(segments, TextSegment{Text: text, Params: current()})
		}
	}

	if !sawRoot {
		return nil, fmt.Errorf("%w: missing <speak> root", ErrParse)
	}
	if depth != 0 {
		return nil, fmt.Errorf("%w: unbalanced elements", ErrParse)
	}
	return segments, nil
}

func attr(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func mergeAttrs(base Params, el xml.StartElement) Params {
	p := base
	for _, a := range el.Attr {
		switch a.Name.Local {
		case "spk":
			p.Speaker = a.Value
		case "style":
			p.Style = a.Value
		case "seed":
			if n, err := strconv.ParseInt(a.Value, 10, 64); err == nil {
				p.Seed = n
			}
		case "temp", "temperature":
			if f, err := strconv.ParseFloat(a.Value, 64); err == nil {
				p.Temperature = f
			}
		case "rate":
			if f, err := strconv.ParseFloat(a.Value, 64); err == nil {
				p.Rate = f
			}
		case "pitch":
			if f, err := strconv.ParseFloat(a.Value, 64); err == nil {
				p.Pitch = f
			}
		case "volume":
			if f, err := strconv.ParseFloat(a.Value, 64); err == nil {
				p.Volume = f
			}
		}
	}
	return p
}

// breakDuration parses the time attribute of a <break>. A bare number is
// taken as milliseconds; "ms" and "s" suffixes are accepted. An absent
// attribute falls back to the default pause.
func breakDuration(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return defaultBreak, nil
	}
	if n, err := strconv.ParseFloat(value, 64); err == nil {
		return checkedBreak(value, time.Duration(n*float64(time.Millisecond)))
	}
	if strings.HasSuffix(value, "ms") {
		if n, err := strconv.ParseFloat(strings.TrimSuffix(value, "ms"), 64); err == nil {
			return checkedBreak(value, time.Duration(n*float64(time.Millisecond)))
		}
	} else if strings.HasSuffix(value, "s") {
		if n, err := strconv.ParseFloat(strings.TrimSuffix(value, "s"), 64); err == nil {
			return checkedBreak(value, time.Duration(n*float64(time.Second)))
		}
	}
	return 0, fmt.Errorf("%w: invalid break time %q", ErrParse, value)
}

// checkedBreak rejects negative break times. Zero is a valid no-op pause.
func checkedBreak(value string, d time.Duration) (time.Duration, error) {
	if d < 0 {
		return 0, fmt.Errorf("%w: negative break time %q", ErrParse, value)
	}
	return d, nil
}
