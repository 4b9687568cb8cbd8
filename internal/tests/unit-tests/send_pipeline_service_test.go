package unit_tests

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"

	"omnichat/internal/events"
	"omnichat/internal/llm/provider"
	"omnichat/internal/models"
	"omnichat/internal/services"
	"omnichat/internal/tests/mocks"
)

const failureText = "Sorry, an error occurred while processing your request."

type pipelineFixture struct {
	store    services.SessionStoreService
	pipeline services.SendPipelineService
}

func newPipelineFixture(t *testing.T) *pipelineFixture {
	t.Helper()

	store := services.NewSessionStoreService(&mocks.SessionListRepositoryMock{})
	store.Startup(context.Background())

	settings := services.NewAppSettingsService(&mocks.AppSettingsRepositoryMock{})
	settings.Startup(context.Background())

	pipeline := services.NewSendPipelineService(store, settings, nil)
	if err := pipeline.Startup(context.Background()); err != nil {
		t.Fatalf("pipeline startup: %v", err)
	}

	return &pipelineFixture{store: store, pipeline: pipeline}
}

func (f *pipelineFixture) useScriptedProvider(chunks []string, finalErr error) {
	f.pipeline.SetProviderFactory(func(ctx context.Context, settings *models.AppSettings) (provider.CompletionProvider, error) {
		return &mocks.CompletionProviderMock{
			StreamFunc: func(ctx context.Context, req *provider.ChatRequest) (*schema.StreamReader[*schema.Message], error) {
				return mocks.ScriptedStream(chunks, finalErr), nil
			},
		}, nil
	})
}

// Sending into a new session commits the user message, assigns the title and
// shows an empty response slot before any chunk arrives.
func TestSendPipeline_FirstSendCommitsUserMessageAndPlaceholder(t *testing.T) {
	f := newPipelineFixture(t)
	id := f.store.CurrentSessionID()

	streamOpened := make(chan struct{})
	release := make(chan struct{})
	f.pipeline.SetProviderFactory(func(ctx context.Context, settings *models.AppSettings) (provider.CompletionProvider, error) {
		return &mocks.CompletionProviderMock{
			StreamFunc: func(ctx context.Context, req *provider.ChatRequest) (*schema.StreamReader[*schema.Message], error) {
				close(streamOpened)
				sr, sw := schema.Pipe[*schema.Message](1)
				go func() {
					<-release
					sw.Close()
				}()
				return sr, nil
			},
		}, nil
	})

	done := make(chan error, 1)
	go func() { done <- f.pipeline.Send(id, "Hello") }()

	<-streamOpened
	session, ok := f.store.Session(id)
	assert.True(t, ok)
	assert.Len(t, session.Messages, 2)
	assert.Equal(t, models.RoleUser, session.Messages[0].Role)
	assert.Equal(t, "Hello", session.Messages[0].Content)
	assert.Equal(t, models.RoleModel, session.Messages[1].Role)
	assert.Equal(t, "", session.Messages[1].Content)
	assert.Equal(t, "Hello", session.Title)
	assert.True(t, f.pipeline.Busy(id))

	close(release)
	assert.NoError(t, <-done)
	assert.False(t, f.pipeline.Busy(id))
}

// Chunks accumulate into exactly one model message, and every intermediate
// state differs from the previous only in the trailing message's content.
func TestSendPipeline_ChunksFoldIntoTrailingMessage(t *testing.T) {
	f := newPipelineFixture(t)
	id := f.store.CurrentSessionID()
	f.useScriptedProvider([]string{"Hi", " there", "!"}, nil)

	var observed []string
	events.SetCustomEmitter(func(ctx context.Context, evt events.ChatEvent) {
		if evt.Type != events.EventChunk {
			return
		}
		session, _ := f.store.Session(id)
		assert.Len(t, session.Messages, 2)
		observed = append(observed, session.Messages[1].Content)
	})
	defer events.SetCustomEmitter(nil)

	assert.NoError(t, f.pipeline.Send(id, "Hello"))

	assert.Equal(t, []string{"Hi", "Hi there", "Hi there!"}, observed)

	session, _ := f.store.Session(id)
	assert.Len(t, session.Messages, 2)
	assert.Equal(t, "Hi there!", session.Messages[1].Content)
	assert.Equal(t, models.RoleModel, session.Messages[1].Role)
}

func TestSendPipeline_TitleTruncatesLongFirstMessage(t *testing.T) {
	f := newPipelineFixture(t)
	id := f.store.CurrentSessionID()
	f.useScriptedProvider([]string{"ok"}, nil)

	input := strings.Repeat("a", 50)
	assert.NoError(t, f.pipeline.Send(id, input))

	session, _ := f.store.Session(id)
	assert.Equal(t, strings.Repeat("a", 30)+"...", session.Title)
}

// The title belongs to the first message only; later sends never retitle.
func TestSendPipeline_TitleSetOnce(t *testing.T) {
	f := newPipelineFixture(t)
	id := f.store.CurrentSessionID()
	f.useScriptedProvider([]string{"ok"}, nil)

	assert.NoError(t, f.pipeline.Send(id, "First question"))
	f.useScriptedProvider([]string{"ok again"}, nil)
	assert.NoError(t, f.pipeline.Send(id, "Second question"))

	session, _ := f.store.Session(id)
	assert.Equal(t, "First question", session.Title)
	assert.Len(t, session.Messages, 4)
}

// A provider failure mid-stream keeps the buffered text and appends a
// separate error-flagged message; nothing is deleted.
func TestSendPipeline_StreamErrorAppendsErrorMessage(t *testing.T) {
	f := newPipelineFixture(t)
	id := f.store.CurrentSessionID()
	f.useScriptedProvider([]string{"partial"}, errors.New("connection reset"))

	var errorEvents int
	events.SetCustomEmitter(func(ctx context.Context, evt events.ChatEvent) {
		if evt.Type == events.EventError {
			errorEvents++
		}
	})
	defer events.SetCustomEmitter(nil)

	assert.NoError(t, f.pipeline.Send(id, "Hello"))

	session, _ := f.store.Session(id)
	assert.Len(t, session.Messages, 3)
	assert.Equal(t, "partial", session.Messages[1].Content)
	assert.False(t, session.Messages[1].IsError)
	assert.Equal(t, failureText, session.Messages[2].Content)
	assert.True(t, session.Messages[2].IsError)
	assert.Equal(t, models.RoleModel, session.Messages[2].Role)
	assert.Equal(t, 1, errorEvents)
	assert.False(t, f.pipeline.Busy(id))
}

// A failure before the stream opens still leaves the conversation intact.
func TestSendPipeline_ProviderResolutionFailure(t *testing.T) {
	f := newPipelineFixture(t)
	id := f.store.CurrentSessionID()
	f.pipeline.SetProviderFactory(func(ctx context.Context, settings *models.AppSettings) (provider.CompletionProvider, error) {
		return nil, errors.New("no API key")
	})

	assert.NoError(t, f.pipeline.Send(id, "Hello"))

	session, _ := f.store.Session(id)
	assert.Len(t, session.Messages, 2)
	assert.Equal(t, "Hello", session.Messages[0].Content)
	assert.True(t, session.Messages[1].IsError)
}

// A stream keeps updating its own session while another one is active.
func TestSendPipeline_BackgroundStreamTargetsItsOwnSession(t *testing.T) {
	f := newPipelineFixture(t)
	target := f.store.CurrentSessionID()

	streamOpened := make(chan struct{})
	chunks := make(chan string)
	f.pipeline.SetProviderFactory(func(ctx context.Context, settings *models.AppSettings) (provider.CompletionProvider, error) {
		return &mocks.CompletionProviderMock{
			StreamFunc: func(ctx context.Context, req *provider.ChatRequest) (*schema.StreamReader[*schema.Message], error) {
				close(streamOpened)
				sr, sw := schema.Pipe[*schema.Message](1)
				go func() {
					defer sw.Close()
					for chunk := range chunks {
						if sw.Send(schema.AssistantMessage(chunk, nil), nil) {
							return
						}
					}
				}()
				return sr, nil
			},
		}, nil
	})

	done := make(chan error, 1)
	go func() { done <- f.pipeline.Send(target, "Hello") }()
	<-streamOpened

	// Switch to a different session while the stream is in flight.
	other := f.store.CreateSession()
	chunks <- "still "
	chunks <- "streaming"
	close(chunks)
	assert.NoError(t, <-done)

	targetSession, _ := f.store.Session(target)
	assert.Len(t, targetSession.Messages, 2)
	assert.Equal(t, "still streaming", targetSession.Messages[1].Content)

	otherSession, _ := f.store.Session(other)
	assert.Empty(t, otherSession.Messages)
	assert.Equal(t, other, f.store.CurrentSessionID())
}

// Deleting the stream's session mid-flight degrades remaining chunks to
// no-ops; sessions created afterwards are untouched.
func TestSendPipeline_DeletedSessionStreamIsIsolated(t *testing.T) {
	f := newPipelineFixture(t)
	target := f.store.CurrentSessionID()

	streamOpened := make(chan struct{})
	chunks := make(chan string)
	f.pipeline.SetProviderFactory(func(ctx context.Context, settings *models.AppSettings) (provider.CompletionProvider, error) {
		return &mocks.CompletionProviderMock{
			StreamFunc: func(ctx context.Context, req *provider.ChatRequest) (*schema.StreamReader[*schema.Message], error) {
				close(streamOpened)
				sr, sw := schema.Pipe[*schema.Message](1)
				go func() {
					defer sw.Close()
					for chunk := range chunks {
						if sw.Send(schema.AssistantMessage(chunk, nil), nil) {
							return
						}
					}
				}()
				return sr, nil
			},
		}, nil
	})

	done := make(chan error, 1)
	go func() { done <- f.pipeline.Send(target, "Hello") }()
	<-streamOpened
	chunks <- "first"

	f.store.DeleteSession(target)
	replacement := f.store.CurrentSessionID()

	chunks <- "second"
	close(chunks)
	assert.NoError(t, <-done)

	_, exists := f.store.Session(target)
	assert.False(t, exists)

	replacementSession, _ := f.store.Session(replacement)
	assert.Empty(t, replacementSession.Messages)
}

func TestSendPipeline_RejectsConcurrentSendForSameSession(t *testing.T) {
	f := newPipelineFixture(t)
	id := f.store.CurrentSessionID()

	streamOpened := make(chan struct{})
	release := make(chan struct{})
	f.pipeline.SetProviderFactory(func(ctx context.Context, settings *models.AppSettings) (provider.CompletionProvider, error) {
		return &mocks.CompletionProviderMock{
			StreamFunc: func(ctx context.Context, req *provider.ChatRequest) (*schema.StreamReader[*schema.Message], error) {
				close(streamOpened)
				sr, sw := schema.Pipe[*schema.Message](1)
				go func() {
					<-release
					sw.Close()
				}()
				return sr, nil
			},
		}, nil
	})

	done := make(chan error, 1)
	go func() { done <- f.pipeline.Send(id, "first") }()
	<-streamOpened

	err := f.pipeline.Send(id, "second")
	assert.ErrorIs(t, err, services.ErrSendInFlight)

	close(release)
	assert.NoError(t, <-done)

	// Only the first send's messages made it into history.
	session, _ := f.store.Session(id)
	assert.Len(t, session.Messages, 2)
}

func TestSendPipeline_EmptyInputIsIgnored(t *testing.T) {
	f := newPipelineFixture(t)
	id := f.store.CurrentSessionID()

	assert.NoError(t, f.pipeline.Send(id, "   \n\t"))

	session, _ := f.store.Session(id)
	assert.Empty(t, session.Messages)
	assert.Equal(t, models.DefaultSessionTitle, session.Title)
	assert.False(t, f.pipeline.Busy(id))
}

func TestSendPipeline_UnknownSessionIsNoOp(t *testing.T) {
	f := newPipelineFixture(t)

	assert.NoError(t, f.pipeline.Send("does-not-exist", "Hello"))
	assert.False(t, f.pipeline.Busy("does-not-exist"))
}

// Stop cancels the stream; buffered text survives and no error message is
// appended for a user-initiated cancellation.
func TestSendPipeline_StopCancelsStream(t *testing.T) {
	f := newPipelineFixture(t)
	id := f.store.CurrentSessionID()

	firstChunk := make(chan struct{})
	f.pipeline.SetProviderFactory(func(ctx context.Context, settings *models.AppSettings) (provider.CompletionProvider, error) {
		return &mocks.CompletionProviderMock{
			StreamFunc: func(ctx context.Context, req *provider.ChatRequest) (*schema.StreamReader[*schema.Message], error) {
				sr, sw := schema.Pipe[*schema.Message](1)
				go func() {
					defer sw.Close()
					sw.Send(schema.AssistantMessage("partial", nil), nil)
					close(firstChunk)
					<-ctx.Done()
					sw.Send(nil, ctx.Err())
				}()
				return sr, nil
			},
		}, nil
	})

	done := make(chan error, 1)
	go func() { done <- f.pipeline.Send(id, "Hello") }()
	<-firstChunk

	// Let the chunk propagate before cancelling.
	assert.Eventually(t, func() bool {
		session, _ := f.store.Session(id)
		return len(session.Messages) == 2 && session.Messages[1].Content == "partial"
	}, time.Second, 5*time.Millisecond)

	f.pipeline.Stop(id)
	assert.NoError(t, <-done)

	session, _ := f.store.Session(id)
	assert.Len(t, session.Messages, 2)
	assert.Equal(t, "partial", session.Messages[1].Content)
	assert.False(t, f.pipeline.Busy(id))
}

// Once a send reached its terminal state another send for the same session
// is accepted again.
func TestSendPipeline_SecondSendAfterCompletion(t *testing.T) {
	f := newPipelineFixture(t)
	id := f.store.CurrentSessionID()

	f.useScriptedProvider([]string{"one"}, nil)
	assert.NoError(t, f.pipeline.Send(id, "first"))

	f.useScriptedProvider([]string{"two"}, nil)
	assert.NoError(t, f.pipeline.Send(id, "second"))

	session, _ := f.store.Session(id)
	assert.Len(t, session.Messages, 4)
	assert.Equal(t, "one", session.Messages[1].Content)
	assert.Equal(t, "two", session.Messages[3].Content)
}
