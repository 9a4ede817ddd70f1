// Package orchestrator drives artifact generation: it routes each request to
// the text or multimedia endpoint, tracks one processing status, and merges
// completed artifacts into the results record.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/learnable-ai/companion/internal/errs"
	"github.com/learnable-ai/companion/internal/extract"
	"github.com/learnable-ai/companion/internal/gateway"
	"github.com/learnable-ai/companion/internal/logger"
	"github.com/learnable-ai/companion/internal/models"
	"github.com/learnable-ai/companion/internal/upload"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultNumQuestions is used when a quiz request does not name a count.
const DefaultNumQuestions = 10

// Request is the user input for one generation.
type Request struct {
	Text         string `json:"text"`
	URL          string `json:"url"`
	NumQuestions int    `json:"numQuestions"`
}

// Processor is the single orchestrator of a process.
type Processor struct {
	gw        Gateway
	queue     *upload.Queue
	creds     gateway.CredentialSource
	extractor TextExtractor

	mu      sync.Mutex
	status  models.ProcessingStatus
	results models.ProcessingResults
	// epoch advances on Reset and Cancel; completions from an older epoch
	// still merge results but leave the status alone.
	epoch uint64

	obsMu     sync.RWMutex
	statusObs []func(models.ProcessingStatus)
	resultObs []func(models.ProcessingResults)
}

// Option configures a Processor.
type Option func(*Processor)

// WithExtractor sets the web page extractor used for URL requests.
func WithExtractor(e TextExtractor) Option {
	return func(p *Processor) { p.extractor = e }
}

// New creates an idle Processor. queue may be nil when files are never used.
func New(gw Gateway, queue *upload.Queue, creds gateway.CredentialSource, opts ...Option) *Processor {
	p := &Processor{
		gw:     gw,
		queue:  queue,
		creds:  creds,
		status: models.IdleStatus(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// OnStatus registers an observer for status changes.
func (p *Processor) OnStatus(fn func(models.ProcessingStatus)) {
	p.obsMu.Lock()
	p.statusObs = append(p.statusObs, fn)
	p.obsMu.Unlock()
}

// OnResults registers an observer for merged results.
func (p *Processor) OnResults(fn func(models.ProcessingResults)) {
	p.obsMu.Lock()
	p.resultObs = append(p.resultObs, fn)
	p.obsMu.Unlock()
}

// Status returns the current status.
func (p *Processor) Status() models.ProcessingStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// Results returns the current results record.
func (p *Processor) Results() models.ProcessingResults {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.results
}

// Cancel returns the status to idle. In-flight requests keep running; their
// results are still merged when they complete.
func (p *Processor) Cancel() {
	p.mu.Lock()
	p.epoch++
	p.status = models.IdleStatus()
	st := p.status
	p.mu.Unlock()

	logger.Info("processing cancelled", zap.String("function", "Processor.Cancel"))
	p.emitStatus(st)
}

// Reset returns the status to idle and clears all results.
func (p *Processor) Reset() {
	p.mu.Lock()
	p.epoch++
	p.status = models.IdleStatus()
	p.results = models.ProcessingResults{}
	st, res := p.status, p.results
	p.mu.Unlock()

	p.emitStatus(st)
	p.emitResults(res)
}

func (p *Processor) GenerateSummary(ctx context.Context, req Request) error {
	return p.Generate(ctx, models.ArtifactSummary, req)
}

func (p *Processor) GenerateMindmap(ctx context.Context, req Request) error {
	return p.Generate(ctx, models.ArtifactMindmap, req)
}

func (p *Processor) GenerateQuiz(ctx context.Context, req Request) error {
	return p.Generate(ctx, models.ArtifactQuiz, req)
}

func (p *Processor) GenerateFlashcards(ctx context.Context, req Request) error {
	return p.Generate(ctx, models.ArtifactFlashcards, req)
}

// Generate produces one artifact and blocks until it completes or fails.
func (p *Processor) Generate(ctx context.Context, kind models.ArtifactKind, req Request) error {
	const funcName = "Processor.Generate"

	if _, ok := models.ParseArtifactKind(string(kind)); !ok {
		return fmt.Errorf("unknown artifact kind %q", kind)
	}

	epoch := p.begin(fmt.Sprintf("Generating %s...", kind))
	logger.Debug("generation started",
		zap.String("function", funcName),
		zap.String("kind", string(kind)),
	)

	if err := p.checkCredentials(); err != nil {
		return p.fail(epoch, kind, err)
	}

	req, err := p.resolveURL(ctx, req)
	if err != nil {
		return p.fail(epoch, kind, err)
	}

	ev, err := p.dispatch(ctx, epoch, kind, req)
	if err != nil {
		return p.fail(epoch, kind, err)
	}

	p.complete(epoch, ev)
	logger.Info("artifact generated",
		zap.String("function", funcName),
		zap.String("kind", string(kind)),
	)
	return nil
}

// GenerateAll fans out one request per kind and waits for all of them. Each
// completion merges into its own slot as soon as it arrives. With no kinds
// every artifact is generated.
func (p *Processor) GenerateAll(ctx context.Context, req Request, kinds ...models.ArtifactKind) error {
	const funcName = "Processor.GenerateAll"

	if len(kinds) == 0 {
		kinds = models.AllArtifacts
	}
	epoch := p.begin(fmt.Sprintf("Generating %d artifacts...", len(kinds)))

	if err := p.checkCredentials(); err != nil {
		return p.fail(epoch, "", err)
	}
	// Resolve a web page once instead of once per artifact.
	req, err := p.resolveURL(ctx, req)
	if err != nil {
		return p.fail(epoch, "", err)
	}

	var g errgroup.Group
	for _, kind := range kinds {
		kind := kind
		g.Go(func() error {
			return p.Generate(ctx, kind, req)
		})
	}
	if err := g.Wait(); err != nil {
		logger.Warn("not every artifact was generated",
			zap.String("function", funcName),
			zap.Error(err),
		)
		return p.fail(epoch, "", err)
	}
	return nil
}

func (p *Processor) checkCredentials() error {
	if p.creds == nil || strings.TrimSpace(p.creds.APIKey()) == "" {
		return errs.ErrMissingAPIKey
	}
	return nil
}

// resolveURL replaces a web page URL with its article text. YouTube links are
// left for the backend.
func (p *Processor) resolveURL(ctx context.Context, req Request) (Request, error) {
	u := strings.TrimSpace(req.URL)
	if strings.TrimSpace(req.Text) != "" || u == "" || extract.IsYouTubeURL(u) {
		return req, nil
	}
	if p.extractor == nil {
		return req, fmt.Errorf("web pages are not supported: %w", errs.ErrMissingInput)
	}
	p.setStatus(p.currentEpoch(), models.StateProcessing, 0, "Reading web page...")
	text, err := p.extractor.Text(ctx, u)
	if err != nil {
		return req, fmt.Errorf("reading %s: %w", u, err)
	}
	req.Text = text
	req.URL = ""
	return req, nil
}

// dispatch picks the endpoint variant and calls the gateway.
func (p *Processor) dispatch(ctx context.Context, epoch uint64, kind models.ArtifactKind, req Request) (Event, error) {
	n := req.NumQuestions
	if n <= 0 {
		n = DefaultNumQuestions
	}

	if text := strings.TrimSpace(req.Text); text != "" {
		switch kind {
		case models.ArtifactSummary:
			res, err := p.gw.Summarize(ctx, text)
			return SummaryCompleted{res}, err
		case models.ArtifactMindmap:
			res, err := p.gw.GenerateMindmap(ctx, text)
			return MindmapCompleted{res}, err
		case models.ArtifactQuiz:
			res, err := p.gw.GenerateQuiz(ctx, text, n)
			return QuizCompleted{res}, err
		default:
			res, err := p.gw.GenerateFlashcards(ctx, text)
			return FlashcardsCompleted{res}, err
		}
	}

	in, files, closeAll, err := p.multimediaInput(req)
	if err != nil {
		return nil, err
	}
	defer closeAll()
	if kind == models.ArtifactQuiz {
		in.Params["num_questions"] = n
	}

	progress := p.progressFunc(epoch, files)
	ev, err := p.callMultimedia(ctx, kind, in, progress)
	for _, f := range files {
		if err != nil {
			p.queue.SetStatus(f.ID, models.FileStatusError, 0, err.Error())
		} else {
			p.queue.SetStatus(f.ID, models.FileStatusSuccess, 100, "")
		}
	}
	return ev, err
}

func (p *Processor) callMultimedia(ctx context.Context, kind models.ArtifactKind, in gateway.MultimediaInput, progress gateway.ProgressFunc) (Event, error) {
	switch kind {
	case models.ArtifactSummary:
		res, err := p.gw.SummarizeMultimedia(ctx, in, progress)
		return SummaryCompleted{res}, err
	case models.ArtifactMindmap:
		res, err := p.gw.GenerateMindmapMultimedia(ctx, in, progress)
		return MindmapCompleted{res}, err
	case models.ArtifactQuiz:
		res, err := p.gw.GenerateQuizMultimedia(ctx, in, progress)
		return QuizCompleted{res}, err
	default:
		res, err := p.gw.GenerateFlashcardsMultimedia(ctx, in, progress)
		return FlashcardsCompleted{res}, err
	}
}

var categoryOrder = []models.MediaCategory{models.CategoryAudio, models.CategoryVideo, models.CategoryDocument}

// multimediaInput builds a request from a YouTube link and the first queued
// file of each category.
func (p *Processor) multimediaInput(req Request) (gateway.MultimediaInput, []models.UploadedFile, func(), error) {
	in := gateway.MultimediaInput{
		Params:     map[string]any{},
		YouTubeURL: strings.TrimSpace(req.URL),
	}
	var (
		files   []models.UploadedFile
		closers []io.Closer
	)
	closeAll := func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}

	var picked map[models.MediaCategory]models.UploadedFile
	if p.queue != nil {
		picked = p.queue.FirstOfEachCategory()
	}
	if len(picked) == 0 && in.YouTubeURL == "" {
		return in, nil, closeAll, errs.ErrMissingInput
	}

	for _, cat := range categoryOrder {
		f, ok := picked[cat]
		if !ok {
			continue
		}
		rc, err := p.queue.Open(f.ID)
		if err != nil {
			closeAll()
			return in, nil, func() {}, fmt.Errorf("opening %s: %w", f.Name, err)
		}
		closers = append(closers, rc)
		files = append(files, f)

		part := &gateway.FilePart{Name: f.Name, MimeType: f.MimeType, Reader: rc}
		switch cat {
		case models.CategoryAudio:
			in.Audio = part
		case models.CategoryVideo:
			in.Video = part
		case models.CategoryDocument:
			in.Document = part
		}
	}
	return in, files, closeAll, nil
}

func (p *Processor) progressFunc(epoch uint64, files []models.UploadedFile) gateway.ProgressFunc {
	for _, f := range files {
		p.queue.SetStatus(f.ID, models.FileStatusUploading, 0, "")
	}
	return func(pct int) {
		for _, f := range files {
			p.queue.SetStatus(f.ID, models.FileStatusUploading, pct, "")
		}
		if pct >= 100 {
			p.setStatus(epoch, models.StateProcessing, 100, "Processing content...")
			return
		}
		p.setStatus(epoch, models.StateUploading, pct, fmt.Sprintf("Uploading files... %d%%", pct))
	}
}

// begin moves to processing and returns the epoch the request belongs to.
func (p *Processor) begin(msg string) uint64 {
	p.mu.Lock()
	p.status = models.ProcessingStatus{State: models.StateProcessing, Message: msg}
	st, epoch := p.status, p.epoch
	p.mu.Unlock()
	p.emitStatus(st)
	return epoch
}

func (p *Processor) currentEpoch() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.epoch
}

func (p *Processor) setStatus(epoch uint64, state models.ProcessingState, progress int, msg string) {
	p.mu.Lock()
	if epoch != p.epoch {
		p.mu.Unlock()
		return
	}
	p.status = models.ProcessingStatus{State: state, Progress: progress, Message: msg}
	st := p.status
	p.mu.Unlock()
	p.emitStatus(st)
}

func (p *Processor) complete(epoch uint64, ev Event) {
	p.mu.Lock()
	p.results = Reduce(p.results, ev)
	res := p.results
	var st *models.ProcessingStatus
	if epoch == p.epoch {
		p.status = models.ProcessingStatus{
			State:    models.StateSuccess,
			Progress: 100,
			Message:  fmt.Sprintf("%s ready", titleCase(string(ev.Kind()))),
		}
		s := p.status
		st = &s
	}
	p.mu.Unlock()

	p.emitResults(res)
	if st != nil {
		p.emitStatus(*st)
	}
}

// fail moves to error and returns err for the caller.
func (p *Processor) fail(epoch uint64, kind models.ArtifactKind, err error) error {
	const funcName = "Processor.fail"

	msg := "Generation failed"
	if kind != "" {
		msg = fmt.Sprintf("Failed to generate %s", kind)
	}
	logger.Warn("generation failed",
		zap.String("function", funcName),
		zap.String("kind", string(kind)),
		zap.Error(err),
	)

	p.mu.Lock()
	if epoch != p.epoch {
		p.mu.Unlock()
		return err
	}
	p.status = models.ProcessingStatus{State: models.StateError, Message: msg, Error: userMessage(err)}
	st := p.status
	p.mu.Unlock()
	p.emitStatus(st)
	return err
}

func userMessage(err error) string {
	var gerr *gateway.Error
	if errors.As(err, &gerr) && gerr.Kind == gateway.Timeout {
		return "The request timed out. " + gerr.Error()
	}
	return err.Error()
}

func (p *Processor) emitStatus(st models.ProcessingStatus) {
	p.obsMu.RLock()
	obs := make([]func(models.ProcessingStatus), len(p.statusObs))
	copy(obs, p.statusObs)
	p.obsMu.RUnlock()
	for _, fn := range obs {
		fn(st)
	}
}

func (p *Processor) emitResults(res models.ProcessingResults) {
	p.obsMu.RLock()
	obs := make([]func(models.ProcessingResults), len(p.resultObs))
	copy(obs, p.resultObs)
	p.obsMu.RUnlock()
	for _, fn := range obs {
		fn(res)
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
