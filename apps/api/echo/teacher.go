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

type teacherApi struct {
	classSvc      *class.Service
	contentSvc    *content.Service
	submissionSvc *submission.Service
	dashboardSvc  *dashboard.Service
	validate      *validator.Validate
}

func registerTeacherAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps, validate *validator.Validate) {
	api := teacherApi{
		classSvc:      deps.ClassSvc,
		contentSvc:    deps.ContentSvc,
		submissionSvc: deps.SubmissionSvc,
		dashboardSvc:  deps.DashboardSvc,
		validate:      validate,
	}

	tg := g.Group("/teacher", jwt, roleMiddleware(deps.UserSvc, user.RoleTeacher))
	tg.GET("/dashboard", api.dashboard)

	tg.GET("/classes", api.listClasses)
	tg.POST("/classes", api.createClass)
	tg.GET("/classes/:classId", api.retrieveClass)
	tg.PUT("/classes/:classId", api.updateClass)
	tg.DELETE("/classes/:classId", api.destroyClass)
	tg.POST("/classes/:classId/regenerate-code", api.regenerateCode)
	tg.GET("/classes/:classId/students", api.listStudents)
	tg.DELETE("/classes/:classId/students/:studentId", api.removeStudent)

	tg.GET("/classes/:classId/assignments", api.listAssignments)
	tg.POST("/classes/:classId/assignments", api.createAssignment)
	tg.GET("/classes/:classId/materials", api.listMaterials)
	tg.POST("/classes/:classId/materials", api.createMaterial)
	tg.DELETE("/materials/:materialId", api.destroyMaterial)

	tg.GET("/assignments/:assignmentId", api.retrieveAssignment)
	tg.DELETE("/assignments/:assignmentId", api.destroyAssignment)
	tg.GET("/assignments/:assignmentId/submissions", api.listSubmissions)
	tg.PUT("/submission/:submissionId/grade", api.grade)
}

func (api *teacherApi) dashboard(ctx echo.Context) error {
	stats, err := api.dashboardSvc.Teacher(ctx.Request().Context(), ctxUser(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, stats)
}

// Classes

func (api *teacherApi) listClasses(ctx echo.Context) error {
	classes, err := api.classSvc.ListForTeacher(ctx.Request().Context(), ctxUser(ctx).ID)
	if err != nil {
		return errors.Wrap(err, "listing classes")
	}
	return ctx.JSON(http.StatusOK, classes)
}

func (api *teacherApi) createClass(ctx echo.Context) error {
	var data class.NewClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClass")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	cls, err := api.classSvc.Create(ctx.Request().Context(), ctxUser(ctx), data)
	if err != nil {
		return errors.Wrap(err, "creating class")
	}
	return ctx.JSON(http.StatusCreated, cls)
}

func (api *teacherApi) retrieveClass(ctx echo.Context) error {
	cls, err := api.classSvc.Get(ctx.Request().Context(), ctxUser(ctx), ctx.Param("classId"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, cls)
}

func (api *teacherApi) updateClass(ctx echo.Context) error {
	var data class.UpdateClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateClass")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	cls, err := api.classSvc.Update(ctx.Request().Context(), ctxUser(ctx), ctx.Param("classId"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, cls)
}

func (api *teacherApi) destroyClass(ctx echo.Context) error {
	if err := api.classSvc.Delete(ctx.Request().Context(), ctxUser(ctx), ctx.Param("classId")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *teacherApi) regenerateCode(ctx echo.Context) error {
	cls, err := api.classSvc.RegenerateCode(ctx.Request().Context(), ctxUser(ctx), ctx.Param("classId"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, cls)
}

func (api *teacherApi) listStudents(ctx echo.Context) error {
	students, err := api.classSvc.Students(ctx.Request().Context(), ctxUser(ctx), ctx.Param("classId"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *teacherApi) removeStudent(ctx echo.Context) error {
	err := api.classSvc.RemoveStudent(ctx.Request().Context(), ctxUser(ctx), ctx.Param("classId"), ctx.Param("studentId"))
	if err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Content

func (api *teacherApi) listAssignments(ctx echo.Context) error {
	assignments, err := api.contentSvc.ListAssignments(ctx.Request().Context(), ctxUser(ctx), ctx.Param("classId"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, assignments)
}

func (api *teacherApi) createAssignment(ctx echo.Context) error {
	var data content.NewAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssignment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	a, err := api.contentSvc.CreateAssignment(ctx.Request().Context(), ctxUser(ctx), ctx.Param("classId"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, a)
}

func (api *teacherApi) retrieveAssignment(ctx echo.Context) error {
	a, err := api.contentSvc.GetAssignment(ctx.Request().Context(), ctxUser(ctx), ctx.Param("assignmentId"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *teacherApi) destroyAssignment(ctx echo.Context) error {
	if err := api.contentSvc.DeleteAssignment(ctx.Request().Context(), ctxUser(ctx), ctx.Param("assignmentId")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *teacherApi) listMaterials(ctx echo.Context) error {
	materials, err := api.contentSvc.ListMaterials(ctx.Request().Context(), ctxUser(ctx), ctx.Param("classId"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, materials)
}

func (api *teacherApi) createMaterial(ctx echo.Context) error {
	var data content.NewMaterial
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMaterial")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	m, err := api.contentSvc.CreateMaterial(ctx.Request().Context(), ctxUser(ctx), ctx.Param("classId"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, m)
}

func (api *teacherApi) destroyMaterial(ctx echo.Context) error {
	if err := api.contentSvc.DeleteMaterial(ctx.Request().Context(), ctxUser(ctx), ctx.Param("materialId")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Submissions

func (api *teacherApi) listSubmissions(ctx echo.Context) error {
	roster, err := api.submissionSvc.ListForAssignment(ctx.Request().Context(), ctxUser(ctx), ctx.Param("assignmentId"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, roster)
}

func (api *teacherApi) grade(ctx echo.Context) error {
	var data submission.GradeRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GradeRequest")
	}

	sub, err := api.submissionSvc.Grade(ctx.Request().Context(), ctxUser(ctx), ctx.Param("submissionId"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sub)
}
