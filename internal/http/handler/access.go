package handler

import (
	"github.com/gofiber/fiber/v2"

	"backoffice/internal/csvexport"
	"backoffice/internal/http/middleware"
	"backoffice/internal/service"
)

// ListPermissions godoc
//
// @Summary  Permission taxonomy grouped by feature
// @Tags     roles
// @Success  200 {array} rbac.GroupPermissions
// @Security BearerAuth
// @Router   /permissions [get]
func ListPermissions(svc service.RoleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(svc.Permissions())
	}
}

func ListRoles(svc service.RoleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		roles, err := svc.List(c.UserContext())
		if err != nil {
			return respond(c, err)
		}
		return c.JSON(fiber.Map{"data": roles})
	}
}

func GetRole(svc service.RoleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c, "id")
		if err != nil {
			return respond(c, err)
		}
		r, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return respond(c, err)
		}
		return c.JSON(r)
	}
}

// CreateRole godoc
//
// @Summary  Create a role
// @Tags     roles
// @Accept   json
// @Param    body body service.RoleInput true "role"
// @Success  201 {object} model.Role
// @Failure  409 {object} errorPayload
// @Failure  422 {object} errorPayload
// @Security BearerAuth
// @Router   /roles [post]
func CreateRole(svc service.RoleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.RoleInput
		if err := bindJSON(c, &in); err != nil {
			return respond(c, err)
		}
		r, err := svc.Create(c.UserContext(), in)
		if err != nil {
			return respond(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(r)
	}
}

func UpdateRole(svc service.RoleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c, "id")
		if err != nil {
			return respond(c, err)
		}
		var in service.RoleInput
		if err := bindJSON(c, &in); err != nil {
			return respond(c, err)
		}
		r, err := svc.Update(c.UserContext(), id, in)
		if err != nil {
			return respond(c, err)
		}
		return c.JSON(r)
	}
}

// DeleteRole godoc
//
// @Summary  Delete a role
// @Tags     roles
// @Success  204
// @Failure  409 {object} errorPayload "role still assigned"
// @Security BearerAuth
// @Router   /roles/{id} [delete]
func DeleteRole(svc service.RoleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c, "id")
		if err != nil {
			return respond(c, err)
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return respond(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func userFilter(c *fiber.Ctx) service.UserFilter {
	return service.UserFilter{Status: c.Query("status"), Query: c.Query("q")}
}

func ListUsers(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, err := pageParams(c)
		if err != nil {
			return respond(c, err)
		}
		res, err := svc.List(c.UserContext(), userFilter(c), limit, offset)
		if err != nil {
			return respond(c, err)
		}
		return c.JSON(res)
	}
}

func GetUser(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c, "id")
		if err != nil {
			return respond(c, err)
		}
		u, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return respond(c, err)
		}
		return c.JSON(u)
	}
}

func CreateUser(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.UserInput
		if err := bindJSON(c, &in); err != nil {
			return respond(c, err)
		}
		u, err := svc.Create(c.UserContext(), in)
		if err != nil {
			return respond(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(u)
	}
}

func UpdateUser(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c, "id")
		if err != nil {
			return respond(c, err)
		}
		var in service.UserInput
		if err := bindJSON(c, &in); err != nil {
			return respond(c, err)
		}
		u, err := svc.Update(c.UserContext(), id, in)
		if err != nil {
			return respond(c, err)
		}
		return c.JSON(u)
	}
}

func DeleteUser(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c, "id")
		if err != nil {
			return respond(c, err)
		}
		var actor string
		if p := middleware.PrincipalFrom(c); p != nil {
			actor = p.UserID
		}
		if err := svc.Delete(c.UserContext(), actor, id); err != nil {
			return respond(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func ExportUsers(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svc.Export(c.UserContext(), userFilter(c))
		if err != nil {
			return respond(c, err)
		}
		return sendCSV(c, csvexport.Users(items))
	}
}

func UploadUserImage(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c, "id")
		if err != nil {
			return respond(c, err)
		}
		f, fh, err := formFile(c)
		if err != nil {
			return respond(c, err)
		}
		defer f.Close()

		u, err := svc.SetImage(c.UserContext(), id, f, fh.Filename, fh.Size)
		if err != nil {
			return respond(c, err)
		}
		return c.JSON(u)
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login godoc
//
// @Summary  Exchange credentials for a bearer token
// @Tags     auth
// @Accept   json
// @Param    body body loginRequest true "credentials"
// @Success  200 {object} service.LoginResult
// @Failure  401 {object} errorPayload
// @Failure  403 {object} errorPayload
// @Router   /auth/login [post]
func Login(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in loginRequest
		if err := bindJSON(c, &in); err != nil {
			return respond(c, err)
		}
		res, err := svc.Login(c.UserContext(), in.Email, in.Password)
		if err != nil {
			return respond(c, err)
		}
		return c.JSON(res)
	}
}

// Me returns the authenticated principal.
func Me() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(middleware.PrincipalFrom(c))
	}
}
