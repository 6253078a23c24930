package rodhost

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// The nil element stands for the document and never needs a browser round trip.
func TestDocumentElement(t *testing.T) {
	t.Parallel()

	p := New(nil, WithLogger(nil))
	require.Nil(t, p.Document())
	require.NotNil(t, p.logger)

	ok, err := p.Matches(p.Document(), "html")
	require.NoError(t, err)
	require.False(t, ok)

	connected, err := p.IsConnected(p.Document())
	require.NoError(t, err)
	require.True(t, connected)

	pos, err := p.locate(nil, nil)
	require.NoError(t, err)
	require.Equal(t, inside, pos)
}

func TestInsertion(t *testing.T) {
	t.Parallel()

	const (
		textNode    = 3
		commentNode = 8
	)

	var tests = []struct {
		name                              string
		pos                               position
		nodeType                          int
		wantReport, wantTarget, wantAdded bool
	}{
		{"element inside root", inside, elementNode, true, true, true},
		{"element under root itself", atRoot, elementNode, true, false, true},
		{"element outside root", outside, elementNode, false, false, false},
		{"comment inside root", inside, commentNode, true, true, false},
		{"comment under root itself", atRoot, commentNode, true, false, false},
		{"text inside root", inside, textNode, true, true, false},
	}

	for i, test := range tests {
		i := i
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			report, target, added := insertion(test.pos, test.nodeType)
			if report != test.wantReport || target != test.wantTarget || added != test.wantAdded {
				t.Errorf(
					"test[%d] %q failed - want: (%v, %v, %v), got: (%v, %v, %v)",
					i, test.name, test.wantReport, test.wantTarget, test.wantAdded, report, target, added,
				)
			}
		})
	}
}
