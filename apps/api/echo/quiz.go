package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/lumina/core/ai"
)

type quizApi struct {
	ai ai.Service
}

func registerQuizAPI(g *echo.Group, jwt, ws echo.MiddlewareFunc, aiSvc ai.Service) {
	api := quizApi{ai: aiSvc}

	qg := g.Group("/quiz", jwt, ws)
	qg.POST("", api.begin)
	qg.GET("", api.view)
	qg.PUT("/answers", api.answer)
	qg.POST("/submit", api.submit)
	qg.DELETE("", api.reset)
}

// begin generates a new quiz and starts its countdown.
func (api *quizApi) begin(ctx echo.Context) error {
	ws, err := getContextWorkspace(ctx)
	if err != nil {
		return err
	}
	var data QuizRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to QuizRequest")
	}
	kind := ai.ParseQuizKind(data.Type)
	attempt, err := ws.Quiz.Begin(data.Topic, kind)
	if err != nil {
		return err
	}

	questions, err := api.ai.Quiz(ctx.Request().Context(), data.Topic, kind)
	if err != nil {
		ws.Quiz.Fail(attempt)
		return errors.Wrap(err, "generating quiz")
	}
	if err := ws.Quiz.Load(attempt, questions); err != nil {
		return errors.Wrap(err, "loading quiz")
	}
	return ctx.JSON(http.StatusCreated, ws.Quiz.View())
}

func (api *quizApi) view(ctx echo.Context) error {
	ws, err := getContextWorkspace(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ws.Quiz.View())
}

func (api *quizApi) answer(ctx echo.Context) error {
	ws, err := getContextWorkspace(ctx)
	if err != nil {
		return err
	}
	var data AnswerRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AnswerRequest")
	}
	if err := ws.Quiz.Answer(data.Question, data.Option); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ws.Quiz.View())
}

func (api *quizApi) submit(ctx echo.Context) error {
	ws, err := getContextWorkspace(ctx)
	if err != nil {
		return err
	}
	res, err := ws.Quiz.Submit()
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *quizApi) reset(ctx echo.Context) error {
	ws, err := getContextWorkspace(ctx)
	if err != nil {
		return err
	}
	ws.Quiz.Reset()
	return ctx.NoContent(http.StatusNoContent)
}

type (
	QuizRequest struct {
		Topic string `json:"topic"`
		Type  string `json:"type"`
	}

	AnswerRequest struct {
		Question int `json:"question"`
		Option   int `json:"option"`
	}
)
