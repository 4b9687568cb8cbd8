package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	"omnichat/internal/events"
	"omnichat/internal/llm/provider"
	"omnichat/internal/models"
)

// ErrSendInFlight is returned when a send is attempted for a session whose
// previous send has not reached a terminal state yet.
var ErrSendInFlight = errors.New("a response is already streaming for this session")

const sendFailureText = "Sorry, an error occurred while processing your request."

// ProviderFactory resolves the configured provider for one send.
type ProviderFactory func(ctx context.Context, settings *models.AppSettings) (provider.CompletionProvider, error)

// ApiKeySource yields the stored API key for a provider id.
type ApiKeySource interface {
	GetApiKey(provider string) (string, error)
}

// SendPipelineService turns a user input into a committed user message,
// drives the configured provider's stream and folds the chunks into the
// trailing model message of the session the send was started for. A send
// keeps targeting its own session id, so it carries on in the background
// when the user switches sessions, and degrades to a no-op when the session
// is deleted mid-stream.
type SendPipelineService interface {
	Startup(ctx context.Context) error
	// Send blocks until the interaction reaches a terminal state. Failures
	// past the user-message commit are converted into an error-flagged
	// history message, never returned.
	Send(sessionID string, text string) error
	// Stop cancels the in-flight stream for the session, if any.
	Stop(sessionID string)
	Busy(sessionID string) bool
	SetProviderFactory(f ProviderFactory)
}

type sendPipelineService struct {
	context  context.Context
	store    SessionStoreService
	settings AppSettingsService
	keys     ApiKeySource
	factory  ProviderFactory

	inFlightMu sync.Mutex
	inFlight   map[string]context.CancelFunc
}

func NewSendPipelineService(store SessionStoreService, settings AppSettingsService, keys ApiKeySource) SendPipelineService {
	s := &sendPipelineService{
		store:    store,
		settings: settings,
		keys:     keys,
		inFlight: make(map[string]context.CancelFunc),
	}
	s.factory = s.defaultProviderFactory
	return s
}

func (s *sendPipelineService) Startup(ctx context.Context) error {
	s.context = ctx
	if s.store == nil {
		return fmt.Errorf("session store service not configured")
	}
	if s.settings == nil {
		return fmt.Errorf("app settings service not configured")
	}
	return nil
}

func (s *sendPipelineService) SetProviderFactory(f ProviderFactory) {
	if f == nil {
		f = s.defaultProviderFactory
		s.factory = f
		return
	}
	s.factory = f
}

func (s *sendPipelineService) Send(sessionID string, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	streamCtx, err := s.markInFlight(sessionID)
	if err != nil {
		return err
	}
	defer s.unmarkInFlight(sessionID)

	session, ok := s.store.Session(sessionID)
	if !ok {
		return nil
	}

	// Optimistic commit: the user message is visible before any provider I/O.
	prior := session.Messages
	userMsg := models.NewMessage(models.RoleUser, text)
	afterUser := append(append([]models.Message(nil), prior...), userMsg)
	s.store.AppendMessages(sessionID, afterUser)

	// Title derives from the first message the session ever received,
	// judged on the pre-send message count.
	if len(prior) == 0 {
		s.store.SetTitle(sessionID, sessionTitleFromInput(text))
	}

	settings, err := s.settings.Get()
	if err != nil {
		log.Printf("send pipeline: falling back to default settings: %v", err)
		defaults := models.DefaultAppSettings()
		settings = &defaults
	}

	prov, err := s.factory(streamCtx, settings)
	if err != nil {
		s.failSession(sessionID, err)
		return nil
	}

	// Response slot for the UI; every chunk rewrites its content in place.
	placeholder := models.NewMessage(models.RoleModel, "")
	s.store.AppendMessages(sessionID, append(afterUser, placeholder))

	reader, err := prov.Stream(streamCtx, &provider.ChatRequest{
		ModelName:         settings.ModelName,
		SystemInstruction: settings.SystemInstruction,
		Temperature:       float32(settings.Temperature),
		History:           prior,
		UserText:          text,
	})
	if err != nil {
		s.failSession(sessionID, err)
		return nil
	}
	defer reader.Close()

	var buffer strings.Builder
	for {
		msg, recvErr := reader.Recv()
		if recvErr != nil {
			if errors.Is(recvErr, io.EOF) {
				events.Emit(s.emitCtx(), events.NewDone(sessionID))
				return nil
			}
			if errors.Is(recvErr, context.Canceled) || streamCtx.Err() != nil {
				// User-initiated stop or session deletion; whatever was
				// buffered stays in history.
				events.Emit(s.emitCtx(), events.NewDone(sessionID))
				return nil
			}
			s.failSession(sessionID, recvErr)
			return nil
		}

		if msg == nil || msg.Content == "" {
			continue
		}
		buffer.WriteString(msg.Content)
		s.store.ReplaceLastMessageContent(sessionID, buffer.String())
		events.Emit(s.emitCtx(), events.NewChunk(sessionID, buffer.String()))
	}
}

func (s *sendPipelineService) Stop(sessionID string) {
	s.inFlightMu.Lock()
	cancel := s.inFlight[sessionID]
	s.inFlightMu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (s *sendPipelineService) Busy(sessionID string) bool {
	s.inFlightMu.Lock()
	defer s.inFlightMu.Unlock()
	_, ok := s.inFlight[sessionID]
	return ok
}

func (s *sendPipelineService) markInFlight(sessionID string) (context.Context, error) {
	s.inFlightMu.Lock()
	defer s.inFlightMu.Unlock()
	if _, exists := s.inFlight[sessionID]; exists {
		return nil, ErrSendInFlight
	}
	parent := s.context
	if parent == nil {
		parent = context.Background()
	}
	streamCtx, cancel := context.WithCancel(parent)
	s.inFlight[sessionID] = cancel
	return streamCtx, nil
}

func (s *sendPipelineService) unmarkInFlight(sessionID string) {
	s.inFlightMu.Lock()
	cancel := s.inFlight[sessionID]
	delete(s.inFlight, sessionID)
	s.inFlightMu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// failSession appends a separate error-flagged message; already-streamed
// placeholder content is never destroyed, only appended after.
func (s *sendPipelineService) failSession(sessionID string, cause error) {
	log.Printf("send pipeline: session %s: %v", sessionID, cause)

	if session, ok := s.store.Session(sessionID); ok {
		errMsg := models.NewMessage(models.RoleModel, sendFailureText)
		errMsg.IsError = true
		s.store.AppendMessages(sessionID, append(session.Messages, errMsg))
	}
	events.Emit(s.emitCtx(), events.NewError(sessionID, sendFailureText))
}

func (s *sendPipelineService) defaultProviderFactory(ctx context.Context, settings *models.AppSettings) (provider.CompletionProvider, error) {
	switch settings.Provider {
	case models.ProviderGemini:
		return provider.NewGeminiProvider(ctx, s.lookupApiKey(models.ProviderGemini))
	case models.ProviderOpenAI, models.ProviderClaude:
		return provider.NewStubProvider(settings.Provider), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", settings.Provider)
	}
}

func (s *sendPipelineService) lookupApiKey(providerID string) string {
	if s.keys != nil {
		if key, err := s.keys.GetApiKey(providerID); err == nil && key != "" {
			return key
		}
	}
	return geminiApiKeyFromEnv()
}

func (s *sendPipelineService) emitCtx() context.Context {
	if s.context != nil {
		return s.context
	}
	return context.Background()
}
