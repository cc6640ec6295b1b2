package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func requestIDApp() *fiber.App {
	app := fiber.New()
	app.Use(RequestID())
	app.Get("/ping", func(c *fiber.Ctx) error {
		id, _ := c.Locals(requestIDHeader).(string)
		return c.SendString(id)
	})
	return app
}

func TestRequestIDHonorsClientUUID(t *testing.T) {
	app := requestIDApp()

	supplied := uuid.NewString()
	req := httptest.NewRequest(fiber.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, supplied)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if got := resp.Header.Get(requestIDHeader); got != supplied {
		t.Fatalf("expected header %s got %s", supplied, got)
	}
}

func TestRequestIDReplacesMalformedID(t *testing.T) {
	app := requestIDApp()

	req := httptest.NewRequest(fiber.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, "not-a-uuid")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}

	got := resp.Header.Get(requestIDHeader)
	if got == "" || got == "not-a-uuid" {
		t.Fatalf("expected a generated id, got %q", got)
	}
	if _, err := uuid.Parse(got); err != nil {
		t.Fatalf("expected a UUID, got %q", got)
	}
}
