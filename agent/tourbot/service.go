// Package tourbot drives the conversational registration flow: each
// user message runs through a compiled graph that grounds the chat
// model on live tour data and executes the registration tool when the
// model calls it.
package tourbot

import (
	"context"
	"errors"
	"strings"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/sam-admissions/tourbot/agent/contract"
	tourbotnode "github.com/sam-admissions/tourbot/agent/nodes"
	statex "github.com/sam-admissions/tourbot/agent/state"
	toolx "github.com/sam-admissions/tourbot/agent/tool"
	tourcontract "github.com/sam-admissions/tourbot/tour/contract"
)

var (
	ErrInvalidMessage      = tourbotnode.ErrInvalidMessage
	ErrInvalidConversation = tourbotnode.ErrInvalidConversation
)

// WelcomeMessage opens every new conversation.
const WelcomeMessage = "¡Hola! Soy Sam, el asistente de admisiones del colegio. Puedo contarte sobre nuestros tours presenciales y ayudarte a reservar un cupo. ¿En qué te ayudo?"

type Option func(*Tourbot)

func WithNotifier(n contractx.Notifier) Option {
	return func(t *Tourbot) {
		if n != nil {
			t.notifier = n
		}
	}
}

func WithExtractor(e contractx.Extractor) Option {
	return func(t *Tourbot) {
		t.extractor = e
	}
}

func WithClock(now func() time.Time) Option {
	return func(t *Tourbot) {
		if now != nil {
			t.now = now
		}
	}
}

type Tourbot struct {
	threads   statex.Store
	registrar contractx.Registrar
	directory contractx.TourDirectory
	notifier  contractx.Notifier
	extractor contractx.Extractor
	executor  toolx.Executor

	turnRunner  compose.Runnable[map[string]any, *schema.Message]
	graphRunner compose.Runnable[tourbotnode.GraphInput, tourbotnode.GraphOutput]

	now func() time.Time
}

func New(
	threads statex.Store,
	registrar contractx.Registrar,
	directory contractx.TourDirectory,
	chatModel einomodel.ToolCallingChatModel,
	systemPrompt string,
	opts ...Option,
) (*Tourbot, error) {
	if threads == nil {
		return nil, errors.New("thread store is required")
	}
	if registrar == nil {
		return nil, errors.New("registrar is required")
	}
	if directory == nil {
		return nil, errors.New("tour directory is required")
	}
	if chatModel == nil {
		return nil, errors.New("chat model is required")
	}
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, contractx.ErrPromptMissing
	}

	t := &Tourbot{
		threads:   threads,
		registrar: registrar,
		directory: directory,
		notifier:  noopNotifier{},
		executor:  toolx.NewExecutor(registrar),
		now:       time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}

	ctx := context.Background()
	turnRunner, err := compileTurnGraph(ctx, chatModel, systemPrompt)
	if err != nil {
		return nil, err
	}
	t.turnRunner = turnRunner

	graphRunner, err := t.compileHandleMessageGraph(ctx)
	if err != nil {
		return nil, err
	}
	t.graphRunner = graphRunner

	return t, nil
}

// HandleMessage runs one conversational turn.
func (t *Tourbot) HandleMessage(ctx context.Context, conversationID, text string) (contractx.ChatResult, error) {
	out, err := t.graphRunner.Invoke(ctx, tourbotnode.GraphInput{
		ConversationID: conversationID,
		Text:           text,
	})
	if err != nil {
		return contractx.ChatResult{}, err
	}
	return contractx.ChatResult{
		ConversationID:        strings.TrimSpace(conversationID),
		Reply:                 out.Reply,
		RegistrationCompleted: out.RegistrationCompleted,
		WaitListed:            out.WaitListed,
		SuggestedTours:        out.SuggestedTours,
	}, nil
}

// StartConversation seeds a fresh thread with the welcome message.
func (t *Tourbot) StartConversation(ctx context.Context, conversationID string) (contractx.ChatResult, error) {
	conversationID = strings.TrimSpace(conversationID)
	if conversationID == "" {
		return contractx.ChatResult{}, ErrInvalidConversation
	}

	now := t.now().UTC()
	thread := statex.NewConversationThread(conversationID, now)
	thread.Append(statex.RoleAssistant, WelcomeMessage, now)
	if err := t.threads.Save(ctx, thread); err != nil {
		return contractx.ChatResult{}, err
	}

	return contractx.ChatResult{
		ConversationID: conversationID,
		Reply:          WelcomeMessage,
	}, nil
}

// EndConversation drops the thread.
func (t *Tourbot) EndConversation(ctx context.Context, conversationID string) error {
	return t.threads.Delete(ctx, conversationID)
}

// noopNotifier is used when no messaging backend is configured.
type noopNotifier struct{}

func (noopNotifier) RegistrationCreated(context.Context, tourcontract.RegisterResult, string) error {
	return nil
}
