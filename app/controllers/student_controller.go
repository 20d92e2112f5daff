package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/schoolpaydev/schoolpay/app/repository"
	"github.com/schoolpaydev/schoolpay/internal/pkg/middleware"
)

// HandleListMyStudents returns the authenticated parent's students with
// their wallets. Admins see their own linked students like any parent;
// cross-parent views go through the admin endpoints.
func HandleListMyStudents(c *fiber.Ctx) error {
	userID, _ := c.Locals(middleware.KeyUserID).(uint)
	if userID == 0 {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	repo := repository.GetGlobalFactory().GetStudentRepository()
	students, err := repo.ListByParentID(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "student_list_failed"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"students": students, "count": len(students)})
}
