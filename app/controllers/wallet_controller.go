package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/schoolpaydev/schoolpay/app/repository"
)

// HandleGetWallet returns a student's wallet with recent transactions.
// Read side only; balances here may trail the ledger by a moment.
func HandleGetWallet(c *fiber.Ctx) error {
	studentID, err := c.ParamsInt("studentID")
	if err != nil || studentID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_student_id"})
	}
	limit := c.QueryInt("limit", 25)

	factory := repository.GetGlobalFactory()
	if _, err := factory.GetStudentRepository().GetByID(uint(studentID)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "student_not_found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "wallet_lookup_failed"})
	}

	wallet, err := factory.GetWalletRepository().GetWithTransactions(uint(studentID), limit)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "wallet_not_found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "wallet_lookup_failed"})
	}

	return c.Status(fiber.StatusOK).JSON(wallet)
}
