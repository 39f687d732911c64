package qa

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flarexio/productgen/llm"
)

type fakeChat struct {
	answers []string
	err     error
	calls   [][]llm.Message
}

func (c *fakeChat) Chat(ctx context.Context, messages []llm.Message) (string, error) {
	c.calls = append(c.calls, messages)
	if c.err != nil {
		return "", c.err
	}

	answer := c.answers[0]
	c.answers = c.answers[1:]
	return answer, nil
}

func (c *fakeChat) GetModel() string {
	return "fake/chat"
}

func TestRunStopsOnSentinel(t *testing.T) {
	assert := assert.New(t)

	chat := &fakeChat{answers: []string{"A vitamin A derivative."}}
	s := NewSession(chat)

	in := strings.NewReader("what is retinol?\nFINISH\nnever asked\n")
	var out bytes.Buffer

	err := s.Run(context.Background(), in, &out)
	assert.NoError(err)

	assert.Len(chat.calls, 1)
	assert.Equal(Transcript{{"what is retinol?", "A vitamin A derivative."}}, s.Transcript())
	assert.Contains(out.String(), "User Question: what is retinol?\nSystem Answer: A vitamin A derivative.")
}

func TestRunCarriesTranscript(t *testing.T) {
	assert := assert.New(t)

	chat := &fakeChat{answers: []string{"A vitamin A derivative.", "Yes, at night."}}
	s := NewSession(chat, WithSystemPrompt("be brief"))

	in := strings.NewReader("what is retinol?\n\n  can I use it daily?  \n finish \n")

	err := s.Run(context.Background(), in, &bytes.Buffer{})
	assert.NoError(err)

	assert.Len(chat.calls, 2)
	assert.Equal([]llm.Message{
		{Role: llm.RoleSystem, Content: "be brief"},
		{Role: llm.RoleUser, Content: "what is retinol?"},
		{Role: llm.RoleAssistant, Content: "A vitamin A derivative."},
		{Role: llm.RoleUser, Content: "can I use it daily?"},
	}, chat.calls[1])
	assert.Len(s.Transcript(), 2)
}

func TestRunEndsOnEOF(t *testing.T) {
	assert := assert.New(t)

	chat := &fakeChat{answers: []string{"Hydration."}}
	s := NewSession(chat)

	err := s.Run(context.Background(), strings.NewReader("what does hyaluronic acid do?"), &bytes.Buffer{})
	assert.NoError(err)
	assert.Len(s.Transcript(), 1)
}

func TestRunBackendErrorSkipsTurn(t *testing.T) {
	assert := assert.New(t)

	chat := &fakeChat{err: errors.New("circuit breaker is open")}
	s := NewSession(chat)

	var out bytes.Buffer
	err := s.Run(context.Background(), strings.NewReader("what is retinol?\nfinish\n"), &out)

	assert.NoError(err)
	assert.Empty(s.Transcript())
	assert.Contains(out.String(), "circuit breaker is open")
}

func TestTranscriptIsCopied(t *testing.T) {
	chat := &fakeChat{answers: []string{"Yes."}}
	s := NewSession(chat)

	_, err := s.Ask(context.Background(), "is SPF needed indoors?")
	assert.NoError(t, err)

	transcript := s.Transcript()
	transcript[0].Answer = "changed"

	assert.Equal(t, "Yes.", s.Transcript()[0].Answer)
}
