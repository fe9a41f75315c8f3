package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/vidmind/internal/topictree"
)

// TextParser handles indented plain-text outlines: one topic per line,
// deeper indentation nests under the line above. A leading "- ", "* " or
// "+ " bullet is stripped. Tabs count as four spaces.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*topictree.Tree, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	o := newOutline(stem(filename))

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent, label := splitIndent(line)
		// Level 0 is the synthetic root, so shift by one.
		o.add(indent+1, label)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return o.tree(), nil
}

func splitIndent(line string) (int, string) {
	indent := 0
	i := 0
loop:
	for ; i < len(line); i++ {
		switch line[i] {
		case ' ':
			indent++
		case '\t':
			indent += 4
		default:
			break loop
		}
	}
	label := strings.TrimSpace(line[i:])
	for _, bullet := range []string{"- ", "* ", "+ "} {
		if rest, ok := strings.CutPrefix(label, bullet); ok {
			label = strings.TrimSpace(rest)
			break
		}
	}
	return indent, label
}
