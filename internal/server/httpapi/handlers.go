package httpapi

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/server/models"
	"github.com/dmitrijs2005/shopkeeper/internal/server/services"
)

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type resetRequest struct {
	Email string `json:"email"`
}

type permissionsRequest struct {
	Permissions []string `json:"permissions"`
}

type messageResponse struct {
	Message string `json:"message"`
	Warning string `json:"warning,omitempty"`
}

func parse(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return badRequest("invalid request body")
	}
	return nil
}

func (s *Server) signup(c *fiber.Ctx) error {
	var in services.SignupInput
	if err := parse(c, &in); err != nil {
		return err
	}
	u, err := s.svc.Sessions.Signup(c.UserContext(), cookieJar{c}, in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(u)
}

func (s *Server) signin(c *fiber.Ctx) error {
	var in signinRequest
	if err := parse(c, &in); err != nil {
		return err
	}
	u, err := s.svc.Sessions.Signin(c.UserContext(), cookieJar{c}, in.Email, in.Password)
	if err != nil {
		if errors.Is(err, common.ErrUserNotFound) || errors.Is(err, common.ErrInvalidCredentials) {
			return fiber.NewError(fiber.StatusUnauthorized, signinFailedMessage)
		}
		return err
	}
	return c.JSON(u)
}

func (s *Server) signout(c *fiber.Ctx) error {
	return c.JSON(messageResponse{Message: s.svc.Sessions.Signout(cookieJar{c})})
}

func (s *Server) requestReset(c *fiber.Ctx) error {
	var in resetRequest
	if err := parse(c, &in); err != nil {
		return err
	}
	resp := messageResponse{Message: "Check your e-mail for a reset link"}
	if err := s.svc.Resets.RequestReset(c.UserContext(), in.Email); err != nil {
		if !errors.Is(err, common.ErrNotificationFailed) {
			return err
		}
		resp.Warning = "the reset e-mail could not be delivered"
	}
	return c.JSON(resp)
}

func (s *Server) resetPassword(c *fiber.Ctx) error {
	var in services.ResetInput
	if err := parse(c, &in); err != nil {
		return err
	}
	u, err := s.svc.Resets.ResetPassword(c.UserContext(), cookieJar{c}, in)
	if err != nil {
		return err
	}
	return c.JSON(u)
}

func (s *Server) me(c *fiber.Ctx) error {
	u, err := s.svc.Users.Me(c.UserContext(), identityFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"user": u})
}

func (s *Server) users(c *fiber.Ctx) error {
	list, err := s.svc.Users.Users(c.UserContext(), identityFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(list)
}

func (s *Server) updatePermissions(c *fiber.Ctx) error {
	var in permissionsRequest
	if err := parse(c, &in); err != nil {
		return err
	}
	u, err := s.svc.Users.UpdatePermissions(c.UserContext(), identityFrom(c), c.Params("id"), in.Permissions)
	if err != nil {
		return err
	}
	return c.JSON(u)
}

func (s *Server) items(c *fiber.Ctx) error {
	list, err := s.svc.Items.Items(c.UserContext(), c.QueryInt("limit", 0), c.QueryInt("offset", 0))
	if err != nil {
		return err
	}
	n, err := s.svc.Items.ItemsCount(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"items": list, "count": n})
}

func (s *Server) item(c *fiber.Ctx) error {
	item, err := s.svc.Items.Item(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(item)
}

func (s *Server) createItem(c *fiber.Ctx) error {
	var in services.ItemInput
	if err := parse(c, &in); err != nil {
		return err
	}
	item, err := s.svc.Items.CreateItem(c.UserContext(), identityFrom(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

func (s *Server) updateItem(c *fiber.Ctx) error {
	var upd models.ItemUpdate
	if err := parse(c, &upd); err != nil {
		return err
	}
	item, err := s.svc.Items.UpdateItem(c.UserContext(), identityFrom(c), c.Params("id"), upd)
	if err != nil {
		return err
	}
	return c.JSON(item)
}

func (s *Server) deleteItem(c *fiber.Ctx) error {
	item, err := s.svc.Items.DeleteItem(c.UserContext(), identityFrom(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(item)
}

func (s *Server) imageUpload(c *fiber.Ctx) error {
	up, err := s.svc.Items.ImageUploadURL(c.UserContext(), identityFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(up)
}

func (s *Server) cart(c *fiber.Ctx) error {
	list, err := s.svc.Cart.Cart(c.UserContext(), identityFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(list)
}

func (s *Server) addToCart(c *fiber.Ctx) error {
	ci, err := s.svc.Cart.AddToCart(c.UserContext(), identityFrom(c), c.Params("itemId"))
	if err != nil {
		return err
	}
	return c.JSON(ci)
}

func (s *Server) removeFromCart(c *fiber.Ctx) error {
	ci, err := s.svc.Cart.RemoveFromCart(c.UserContext(), identityFrom(c), c.Params("cartItemId"))
	if err != nil {
		return err
	}
	return c.JSON(ci)
}
