package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/sarvashiksha/backend/core/class"
	"github.com/sarvashiksha/backend/core/content"
	"github.com/sarvashiksha/backend/core/dashboard"
	"github.com/sarvashiksha/backend/core/submission"
	"github.com/sarvashiksha/backend/core/user"
)

type studentApi struct {
	classSvc      *class.Service
	contentSvc    *content.Service
	submissionSvc *submission.Service
	dashboardSvc  *dashboard.Service
	validate      *validator.Validate
}

func registerStudentAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps, validate *validator.Validate) {
	api := studentApi{
		classSvc:      deps.ClassSvc,
		contentSvc:    deps.ContentSvc,
		submissionSvc: deps.SubmissionSvc,
		dashboardSvc:  deps.DashboardSvc,
		validate:      validate,
	}

	sg := g.Group("/student", jwt, roleMiddleware(deps.UserSvc, user.RoleStudent))
	sg.GET("/dashboard", api.dashboard)

	sg.GET("/classes", api.listClasses)
	sg.POST("/classes/join", api.join)
	sg.GET("/classes/:classId", api.retrieveClass)
	sg.DELETE("/classes/:classId", api.leave)
	sg.GET("/classes/:classId/assignments", api.listAssignments)
	sg.GET("/classes/:classId/materials", api.listMaterials)

	sg.GET("/submissions", api.listSubmissions)
	sg.GET("/assessment/:assessmentId", api.retrieveAssessment)
	sg.GET("/assessment/:assessmentId/submission", api.retrieveSubmission)
	sg.POST("/assessment/:assessmentId/submit", api.submit)
}

func (api *studentApi) dashboard(ctx echo.Context) error {
	stats, err := api.dashboardSvc.Student(ctx.Request().Context(), ctxUser(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, stats)
}

// Classes

func (api *studentApi) listClasses(ctx echo.Context) error {
	classes, err := api.classSvc.ListForStudent(ctx.Request().Context(), ctxUser(ctx).ID)
	if err != nil {
		return errors.Wrap(err, "listing classes")
	}
	return ctx.JSON(http.StatusOK, classes)
}

func (api *studentApi) join(ctx echo.Context) error {
	var data class.JoinClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to JoinClass")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	cls, err := api.classSvc.Enroll(ctx.Request().Context(), ctxUser(ctx), data.EnrollmentCode)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, cls)
}

func (api *studentApi) retrieveClass(ctx echo.Context) error {
	cls, err := api.classSvc.Get(ctx.Request().Context(), ctxUser(ctx), ctx.Param("classId"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, cls)
}

func (api *studentApi) leave(ctx echo.Context) error {
	if err := api.classSvc.Leave(ctx.Request().Context(), ctxUser(ctx), ctx.Param("classId")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *studentApi) listAssignments(ctx echo.Context) error {
	assignments, err := api.contentSvc.ListAssignments(ctx.Request().Context(), ctxUser(ctx), ctx.Param("classId"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, assignments)
}

func (api *studentApi) listMaterials(ctx echo.Context) error {
	materials, err := api.contentSvc.ListMaterials(ctx.Request().Context(), ctxUser(ctx), ctx.Param("classId"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, materials)
}

// Assessments

func (api *studentApi) listSubmissions(ctx echo.Context) error {
	subs, err := api.submissionSvc.ListForStudent(ctx.Request().Context(), ctxUser(ctx))
	if err != nil {
		return errors.Wrap(err, "listing submissions")
	}
	return ctx.JSON(http.StatusOK, subs)
}

func (api *studentApi) retrieveAssessment(ctx echo.Context) error {
	a, err := api.contentSvc.GetAssignment(ctx.Request().Context(), ctxUser(ctx), ctx.Param("assessmentId"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *studentApi) retrieveSubmission(ctx echo.Context) error {
	sub, err := api.submissionSvc.Get(ctx.Request().Context(), ctxUser(ctx), ctx.Param("assessmentId"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *studentApi) submit(ctx echo.Context) error {
	var data submission.SubmitRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SubmitRequest")
	}

	sub, err := api.submissionSvc.Submit(ctx.Request().Context(), ctxUser(ctx), ctx.Param("assessmentId"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, sub)
}
