package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/learnable-ai/companion/internal/errs"
	"github.com/learnable-ai/companion/internal/gateway"
	"github.com/learnable-ai/companion/internal/logger"
	"github.com/learnable-ai/companion/internal/models"
	mock_orchestrator "github.com/learnable-ai/companion/internal/orchestrator/mocks"
	"github.com/learnable-ai/companion/internal/testutil"
	"github.com/learnable-ai/companion/internal/upload"
	"github.com/learnable-ai/companion/internal/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.InitTestLogger()
	os.Exit(m.Run())
}

type statusRecorder struct {
	mu     sync.Mutex
	states []models.ProcessingState
}

func (r *statusRecorder) record(st models.ProcessingStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n := len(r.states); n > 0 && r.states[n-1] == st.State {
		return
	}
	r.states = append(r.states, st.State)
}

func (r *statusRecorder) get() []models.ProcessingState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.ProcessingState(nil), r.states...)
}

func newQueue(t *testing.T, names ...string) *upload.Queue {
	t.Helper()
	q := upload.NewQueue(testutil.NewMockStorage(), validate.New(0))
	for _, n := range names {
		_, rej, err := q.Add(upload.Incoming{Name: n, Size: 4, Reader: strings.NewReader("data")})
		require.NoError(t, err)
		require.Nil(t, rej)
	}
	return q
}

func readPart(t *testing.T, f *gateway.FilePart) string {
	t.Helper()
	require.NotNil(t, f)
	b, err := io.ReadAll(f.Reader)
	require.NoError(t, err)
	return string(b)
}

func TestProcessor_Routing(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		kind      models.ArtifactKind
		req       Request
		files     []string
		mockSetup func(gw *mock_orchestrator.MockGateway, ex *mock_orchestrator.MockTextExtractor)
		wantErr   error
	}{
		{
			name:  "TextUsesJSONEndpoint",
			kind:  models.ArtifactSummary,
			req:   Request{Text: "  Cells divide.  "},
			files: nil,
			mockSetup: func(gw *mock_orchestrator.MockGateway, _ *mock_orchestrator.MockTextExtractor) {
				gw.EXPECT().Summarize(gomock.Any(), "Cells divide.").
					Return(&models.SummaryResult{Success: true, Summary: "s"}, nil)
			},
		},
		{
			name:  "TextWinsOverFiles",
			kind:  models.ArtifactFlashcards,
			req:   Request{Text: "Mitosis"},
			files: []string{"talk.mp3"},
			mockSetup: func(gw *mock_orchestrator.MockGateway, _ *mock_orchestrator.MockTextExtractor) {
				gw.EXPECT().GenerateFlashcards(gomock.Any(), "Mitosis").
					Return(&models.FlashcardsResult{Success: true}, nil)
			},
		},
		{
			name: "QuizDefaultsToTenQuestions",
			kind: models.ArtifactQuiz,
			req:  Request{Text: "Mitosis"},
			mockSetup: func(gw *mock_orchestrator.MockGateway, _ *mock_orchestrator.MockTextExtractor) {
				gw.EXPECT().GenerateQuiz(gomock.Any(), "Mitosis", 10).
					Return(&models.QuizResult{Success: true}, nil)
			},
		},
		{
			name:  "FilesUseFirstOfEachCategory",
			kind:  models.ArtifactSummary,
			files: []string{"first.mp3", "second.wav", "notes.pdf"},
			mockSetup: func(gw *mock_orchestrator.MockGateway, _ *mock_orchestrator.MockTextExtractor) {
				gw.EXPECT().SummarizeMultimedia(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, in gateway.MultimediaInput, progress gateway.ProgressFunc) (*models.SummaryResult, error) {
						assert.Equal(t, "first.mp3", in.Audio.Name)
						assert.Equal(t, "audio/mpeg", in.Audio.MimeType)
						assert.Equal(t, "data", readPart(t, in.Audio))
						assert.Equal(t, "notes.pdf", in.Document.Name)
						assert.Nil(t, in.Video)
						assert.Empty(t, in.YouTubeURL)
						assert.NotNil(t, progress)
						return &models.SummaryResult{Success: true, ContentType: "audio"}, nil
					})
			},
		},
		{
			name:  "QuizMultimediaCarriesCount",
			kind:  models.ArtifactQuiz,
			req:   Request{NumQuestions: 5},
			files: []string{"lecture.mp4"},
			mockSetup: func(gw *mock_orchestrator.MockGateway, _ *mock_orchestrator.MockTextExtractor) {
				gw.EXPECT().GenerateQuizMultimedia(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, in gateway.MultimediaInput, _ gateway.ProgressFunc) (*models.QuizResult, error) {
						assert.Equal(t, 5, in.Params["num_questions"])
						assert.Equal(t, "lecture.mp4", in.Video.Name)
						return &models.QuizResult{Success: true}, nil
					})
			},
		},
		{
			name: "YouTubeGoesToMultimedia",
			kind: models.ArtifactMindmap,
			req:  Request{URL: "https://www.youtube.com/watch?v=dQw4w9WgXcQ"},
			mockSetup: func(gw *mock_orchestrator.MockGateway, _ *mock_orchestrator.MockTextExtractor) {
				gw.EXPECT().GenerateMindmapMultimedia(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, in gateway.MultimediaInput, _ gateway.ProgressFunc) (*models.MindmapResult, error) {
						assert.Equal(t, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", in.YouTubeURL)
						assert.Nil(t, in.Audio)
						return &models.MindmapResult{Success: true, Topic: "video"}, nil
					})
			},
		},
		{
			name: "WebPageIsExtracted",
			kind: models.ArtifactFlashcards,
			req:  Request{URL: "https://example.com/article"},
			mockSetup: func(gw *mock_orchestrator.MockGateway, ex *mock_orchestrator.MockTextExtractor) {
				ex.EXPECT().Text(gomock.Any(), "https://example.com/article").Return("Article body", nil)
				gw.EXPECT().GenerateFlashcards(gomock.Any(), "Article body").
					Return(&models.FlashcardsResult{Success: true}, nil)
			},
		},
		{
			name:      "NoInputNoNetwork",
			kind:      models.ArtifactQuiz,
			req:       Request{Text: "   "},
			mockSetup: func(*mock_orchestrator.MockGateway, *mock_orchestrator.MockTextExtractor) {},
			wantErr:   errs.ErrMissingInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			gw := mock_orchestrator.NewMockGateway(ctrl)
			ex := mock_orchestrator.NewMockTextExtractor(ctrl)
			tt.mockSetup(gw, ex)

			p := New(gw, newQueue(t, tt.files...), gateway.StaticKey("key"), WithExtractor(ex))
			rec := &statusRecorder{}
			p.OnStatus(rec.record)

			err := p.Generate(ctx, tt.kind, tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, []models.ProcessingState{models.StateProcessing, models.StateError}, rec.get())
				assert.True(t, p.Results().Empty())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, models.StateSuccess, p.Status().State)
			assert.True(t, p.Results().Has(tt.kind))
		})
	}
}

func TestProcessor_MissingAPIKey(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	gw := mock_orchestrator.NewMockGateway(ctrl)
	p := New(gw, newQueue(t), gateway.StaticKey(""))
	rec := &statusRecorder{}
	p.OnStatus(rec.record)

	err := p.GenerateSummary(context.Background(), Request{Text: "hello"})
	assert.ErrorIs(t, err, errs.ErrMissingAPIKey)
	assert.Equal(t, []models.ProcessingState{models.StateProcessing, models.StateError}, rec.get())
	assert.Contains(t, p.Status().Error, "API key")
}

func TestProcessor_TimeoutKeepsPriorSlots(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	summary := &models.SummaryResult{Success: true, Summary: "Plants make sugar."}
	gw := mock_orchestrator.NewMockGateway(ctrl)
	gw.EXPECT().Summarize(gomock.Any(), gomock.Any()).Return(summary, nil)
	gw.EXPECT().GenerateQuiz(gomock.Any(), gomock.Any(), 5).
		Return(nil, &gateway.Error{Kind: gateway.Timeout, Op: "quiz", Message: "5m0s", Err: context.DeadlineExceeded})

	p := New(gw, nil, gateway.StaticKey("key"))
	ctx := context.Background()
	require.NoError(t, p.GenerateSummary(ctx, Request{Text: "Photosynthesis"}))

	err := p.GenerateQuiz(ctx, Request{Text: "Photosynthesis", NumQuestions: 5})
	require.Error(t, err)
	assert.True(t, gateway.IsKind(err, gateway.Timeout))

	st := p.Status()
	assert.Equal(t, models.StateError, st.State)
	assert.Contains(t, st.Error, "timed out")

	res := p.Results()
	assert.Same(t, summary, res.Summary)
	assert.Nil(t, res.Quiz)
}

func TestProcessor_CancelDoesNotAbort(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	release := make(chan struct{})
	started := make(chan struct{})
	gw := mock_orchestrator.NewMockGateway(ctrl)
	gw.EXPECT().Summarize(gomock.Any(), "text").
		DoAndReturn(func(ctx context.Context, _ string) (*models.SummaryResult, error) {
			close(started)
			<-release
			return &models.SummaryResult{Success: true, Summary: "late"}, nil
		})

	p := New(gw, nil, gateway.StaticKey("key"))
	done := make(chan error, 1)
	go func() { done <- p.GenerateSummary(context.Background(), Request{Text: "text"}) }()

	<-started
	assert.Equal(t, models.StateProcessing, p.Status().State)
	p.Cancel()
	assert.Equal(t, models.StateIdle, p.Status().State)

	close(release)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("generation did not finish")
	}

	assert.Equal(t, models.StateIdle, p.Status().State, "late completion leaves status idle")
	require.NotNil(t, p.Results().Summary)
	assert.Equal(t, "late", p.Results().Summary.Summary)
}

func TestProcessor_StatusFollowsLastResolved(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	release := make(chan struct{})
	started := make(chan struct{})
	gw := mock_orchestrator.NewMockGateway(ctrl)
	gw.EXPECT().Summarize(gomock.Any(), "text").
		DoAndReturn(func(ctx context.Context, _ string) (*models.SummaryResult, error) {
			close(started)
			<-release
			return &models.SummaryResult{Success: true, Summary: "late"}, nil
		})
	gw.EXPECT().GenerateQuiz(gomock.Any(), "text", 5).
		Return(nil, &gateway.Error{Kind: gateway.Backend, Op: "quiz", Message: "quota exceeded"})

	p := New(gw, nil, gateway.StaticKey("key"))
	done := make(chan error, 1)
	go func() { done <- p.GenerateSummary(context.Background(), Request{Text: "text"}) }()
	<-started

	require.Error(t, p.GenerateQuiz(context.Background(), Request{Text: "text", NumQuestions: 5}))
	assert.Equal(t, models.StateError, p.Status().State)

	close(release)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("generation did not finish")
	}

	st := p.Status()
	assert.Equal(t, models.StateSuccess, st.State)
	assert.Empty(t, st.Error)
	assert.NotNil(t, p.Results().Summary)
	assert.Nil(t, p.Results().Quiz)
}

func TestProcessor_Reset(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	gw := mock_orchestrator.NewMockGateway(ctrl)
	gw.EXPECT().GenerateMindmap(gomock.Any(), "Cells").
		Return(&models.MindmapResult{Success: true, Topic: "Cells"}, nil)

	p := New(gw, nil, gateway.StaticKey("key"))
	var last models.ProcessingResults
	p.OnResults(func(r models.ProcessingResults) { last = r })

	require.NoError(t, p.GenerateMindmap(context.Background(), Request{Text: "Cells"}))
	require.NotNil(t, last.Mindmap)

	p.Reset()
	assert.Equal(t, models.IdleStatus(), p.Status())
	assert.True(t, p.Results().Empty())
	assert.True(t, last.Empty())
}

func TestProcessor_GenerateAllMergesEverySlot(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	gw := mock_orchestrator.NewMockGateway(ctrl)
	gw.EXPECT().Summarize(gomock.Any(), "Cells").Return(&models.SummaryResult{Summary: "s"}, nil)
	gw.EXPECT().GenerateMindmap(gomock.Any(), "Cells").Return(&models.MindmapResult{Topic: "Cells"}, nil)
	gw.EXPECT().GenerateQuiz(gomock.Any(), "Cells", 3).Return(&models.QuizResult{NumQuestions: 3}, nil)
	gw.EXPECT().GenerateFlashcards(gomock.Any(), "Cells").
		Return(nil, fmt.Errorf("boom"))

	p := New(gw, nil, gateway.StaticKey("key"))
	err := p.GenerateAll(context.Background(), Request{Text: "Cells", NumQuestions: 3})
	assert.ErrorContains(t, err, "boom")

	res := p.Results()
	assert.NotNil(t, res.Summary)
	assert.NotNil(t, res.Mindmap)
	assert.NotNil(t, res.Quiz)
	assert.Nil(t, res.Flashcards)
	assert.Equal(t, models.StateError, p.Status().State)
}

func TestProcessor_FileStatusFollowsTransfer(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	q := newQueue(t, "talk.mp3")
	gw := mock_orchestrator.NewMockGateway(ctrl)

	p := New(gw, q, gateway.StaticKey("key"))
	rec := &statusRecorder{}
	p.OnStatus(rec.record)

	gw.EXPECT().GenerateFlashcardsMultimedia(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ gateway.MultimediaInput, progress gateway.ProgressFunc) (*models.FlashcardsResult, error) {
			progress(40)
			f := q.List()[0]
			assert.Equal(t, models.FileStatusUploading, f.Status)
			assert.Equal(t, 40, f.Progress)
			progress(100)
			return &models.FlashcardsResult{Success: true, TotalCards: 1}, nil
		})

	require.NoError(t, p.GenerateFlashcards(context.Background(), Request{}))

	f := q.List()[0]
	assert.Equal(t, models.FileStatusSuccess, f.Status)
	assert.Equal(t, 100, f.Progress)
	assert.Equal(t, []models.ProcessingState{
		models.StateProcessing,
		models.StateUploading,
		models.StateProcessing,
		models.StateSuccess,
	}, rec.get())
}

// End to end against a fake backend with the real gateway client.
func TestProcessor_TextQuizEndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/learning/generate-mcq-quiz", r.URL.Path)
		var body struct {
			Content      string `json:"content"`
			NumQuestions int    `json:"num_questions"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		quiz := make([]models.MCQQuestion, body.NumQuestions)
		for i := range quiz {
			quiz[i] = models.MCQQuestion{
				Question:      fmt.Sprintf("Question %d?", i+1),
				Options:       []string{"Light", "Water", "Soil", "Wind"},
				CorrectAnswer: string(rune('A' + i%4)),
			}
		}
		_ = json.NewEncoder(w).Encode(models.QuizResult{
			Success:      true,
			Content:      body.Content,
			NumQuestions: body.NumQuestions,
			Quiz:         quiz,
		})
	}))
	defer srv.Close()

	client, err := gateway.New(gateway.Options{BaseURL: srv.URL, Credentials: gateway.StaticKey("key")})
	require.NoError(t, err)

	p := New(client, newQueue(t), gateway.StaticKey("key"))
	rec := &statusRecorder{}
	p.OnStatus(rec.record)

	err = p.GenerateQuiz(context.Background(), Request{
		Text:         "Photosynthesis converts light into chemical energy",
		NumQuestions: 5,
	})
	require.NoError(t, err)

	assert.Equal(t, []models.ProcessingState{models.StateProcessing, models.StateSuccess}, rec.get())
	quiz := p.Results().Quiz
	require.NotNil(t, quiz)
	require.Len(t, quiz.Quiz, 5)
	for _, q := range quiz.Quiz {
		assert.Len(t, q.Options, 4)
		assert.Contains(t, q.Options, q.CorrectAnswer)
	}
}
