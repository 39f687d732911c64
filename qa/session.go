// Package qa runs an interactive question/answer session against a
// language model, carrying the whole conversation on every turn.
package qa

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/flarexio/productgen/llm"
)

const (
	Sentinel = "finish"
	Prompt   = "Enter your question, if you want to exit type 'finish': "

	DefaultSystemPrompt = "You are a knowledgeable skincare assistant. Answer questions about skincare ingredients, products and routines concisely."
)

type Turn struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Transcript grows for the life of the session and is never persisted.
type Transcript []Turn

func (t Transcript) Messages(system string) []llm.Message {
	messages := make([]llm.Message, 0, 2*len(t)+2)
	if system != "" {
		messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: system})
	}

	for _, turn := range t {
		messages = append(messages,
			llm.Message{Role: llm.RoleUser, Content: turn.Question},
			llm.Message{Role: llm.RoleAssistant, Content: turn.Answer},
		)
	}

	return messages
}

type Session struct {
	chat       llm.ChatGenerator
	system     string
	transcript Transcript
	log        *zap.Logger
}

type Option func(*Session)

func WithSystemPrompt(prompt string) Option {
	return func(s *Session) {
		s.system = prompt
	}
}

func NewSession(chat llm.ChatGenerator, opts ...Option) *Session {
	s := &Session{
		chat:   chat,
		system: DefaultSystemPrompt,
		log: zap.L().With(
			zap.String("component", "qa"),
			zap.String("model", chat.GetModel()),
		),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Ask sends one question with the accumulated transcript and records the
// turn when the model answers.
func (s *Session) Ask(ctx context.Context, question string) (string, error) {
	messages := s.transcript.Messages(s.system)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: question})

	answer, err := s.chat.Chat(ctx, messages)
	if err != nil {
		return "", err
	}

	s.transcript = append(s.transcript, Turn{question, answer})
	return answer, nil
}

// Run reads questions line by line from in until the sentinel or EOF.
func (s *Session) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprint(out, Prompt)

		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		question := strings.TrimSpace(scanner.Text())
		if strings.EqualFold(question, Sentinel) {
			return nil
		}

		if question == "" {
			continue
		}

		answer, err := s.Ask(ctx, question)
		if err != nil {
			s.log.Error(err.Error(), zap.Int("turn", len(s.transcript)+1))
			fmt.Fprintf(out, "✗ Error: %s\n", err.Error())

			if ctx.Err() != nil {
				return ctx.Err()
			}

			continue
		}

		fmt.Fprintf(out, "User Question: %s\nSystem Answer: %s\n", question, answer)
	}
}

func (s *Session) Transcript() Transcript {
	t := make(Transcript, len(s.transcript))
	copy(t, s.transcript)
	return t
}
