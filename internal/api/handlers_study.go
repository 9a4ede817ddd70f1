// handlers_study.go - Quiz, flashcard and mind-map handlers
package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/learnable-ai/companion/internal/errs"
	"github.com/learnable-ai/companion/internal/mindmap"
)

// StudyHandlerImpl implements the StudyHandler interface
type StudyHandlerImpl struct {
	study *Study
	proc  Processor
}

// NewStudyHandler creates a new study handler instance
func NewStudyHandler(study *Study, proc Processor) StudyHandler {
	return &StudyHandlerImpl{study: study, proc: proc}
}

type answerRequest struct {
	Option string `json:"option"`
}

// HandleGetQuiz returns the quiz attempt
func (h *StudyHandlerImpl) HandleGetQuiz(c echo.Context) error {
	s, err := h.study.Quiz()
	if err != nil {
		return FromError(err)
	}
	return c.JSON(http.StatusOK, s.Snapshot())
}

// HandleQuizAnswer records an answer for the current question
func (h *StudyHandlerImpl) HandleQuizAnswer(c echo.Context) error {
	s, err := h.study.Quiz()
	if err != nil {
		return FromError(err)
	}
	var req answerRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if req.Option == "" {
		return NewValidationError("option")
	}
	if !s.Select(req.Option) {
		return NewConflictError("the quiz is finished; restart it to answer again")
	}
	return c.JSON(http.StatusOK, s.Snapshot())
}

// HandleQuizNext moves to the next question
func (h *StudyHandlerImpl) HandleQuizNext(c echo.Context) error {
	s, err := h.study.Quiz()
	if err != nil {
		return FromError(err)
	}
	s.Next()
	return c.JSON(http.StatusOK, s.Snapshot())
}

// HandleQuizPrevious moves to the previous question
func (h *StudyHandlerImpl) HandleQuizPrevious(c echo.Context) error {
	s, err := h.study.Quiz()
	if err != nil {
		return FromError(err)
	}
	s.Previous()
	return c.JSON(http.StatusOK, s.Snapshot())
}

// HandleQuizFinish scores the attempt
func (h *StudyHandlerImpl) HandleQuizFinish(c echo.Context) error {
	s, err := h.study.Quiz()
	if err != nil {
		return FromError(err)
	}
	if _, ok := s.Finish(); !ok {
		return NewConflictError("answer every question before finishing")
	}
	return c.JSON(http.StatusOK, s.Snapshot())
}

// HandleQuizRestart clears every answer
func (h *StudyHandlerImpl) HandleQuizRestart(c echo.Context) error {
	s, err := h.study.Quiz()
	if err != nil {
		return FromError(err)
	}
	s.Restart()
	return c.JSON(http.StatusOK, s.Snapshot())
}

// HandleGetFlashcards returns the visible cards
func (h *StudyHandlerImpl) HandleGetFlashcards(c echo.Context) error {
	v, err := h.study.Flashcards()
	if err != nil {
		return FromError(err)
	}
	return c.JSON(http.StatusOK, v.Snapshot())
}

// HandleFlipFlashcard flips one card
func (h *StudyHandlerImpl) HandleFlipFlashcard(c echo.Context) error {
	v, err := h.study.Flashcards()
	if err != nil {
		return FromError(err)
	}
	idx, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return NewBadRequestError("invalid card index", err)
	}
	flipped, ok := v.Flip(idx)
	if !ok {
		return NewNotFoundError("flashcard", c.Param("index"))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"index":   idx,
		"flipped": flipped,
	})
}

// HandleMoreFlashcards reveals the next page of cards
func (h *StudyHandlerImpl) HandleMoreFlashcards(c echo.Context) error {
	v, err := h.study.Flashcards()
	if err != nil {
		return FromError(err)
	}
	v.LoadMore()
	return c.JSON(http.StatusOK, v.Snapshot())
}

// HandleGetMindmap renders the mind map with ?renderer=mermaid|layout
func (h *StudyHandlerImpl) HandleGetMindmap(c echo.Context) error {
	res := h.proc.Results().Mindmap
	if res == nil {
		return FromError(errs.ErrNoMindmap)
	}
	r, err := mindmap.ByName(c.QueryParam("renderer"))
	if err != nil {
		return NewBadRequestError("unknown renderer", err)
	}
	d, err := r.Render(res.Mindmap)
	if err != nil {
		return NewInternalError("failed to render mind map", err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"topic":   res.Topic,
		"diagram": d,
	})
}
