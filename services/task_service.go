// services/task_service.go
package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"cryptopay-platform/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Fixed daily catalog; every user gets the same three tasks each day.
var dailyTaskCatalog = []struct {
	Type   models.TaskType
	Reward decimal.Decimal
}{
	{models.TaskTypeWatchAd, decimal.NewFromFloat(2.50)},
	{models.TaskTypeSpinWheel, decimal.NewFromFloat(5.00)},
	{models.TaskTypeQuiz, decimal.NewFromFloat(3.00)},
}

var (
	ErrTaskNotFound  = errors.New("task not found")
	ErrTaskCompleted = errors.New("task already completed")
)

type TaskService struct {
	DB     *gorm.DB
	Ledger *LedgerService
}

func NewTaskService(db *gorm.DB, ledger *LedgerService) *TaskService {
	return &TaskService{DB: db, Ledger: ledger}
}

// TaskDay truncates t to the UTC calendar day the task engine partitions by.
func TaskDay(t time.Time) time.Time {
	return t.UTC().Truncate(24 * time.Hour)
}

// TasksForDay returns the user's tasks for the given day, lazily issuing the
// fixed catalog on first request. The unique (user, type, day) index keeps
// concurrent first requests from duplicating rows.
func (s *TaskService) TasksForDay(userID string, day time.Time) ([]models.DailyTask, error) {
	day = TaskDay(day)

	var tasks []models.DailyTask
	if err := s.DB.Where("user_id = ? AND task_date = ?", userID, day).
		Order("task_type").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	if len(tasks) > 0 {
		return tasks, nil
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		for _, item := range dailyTaskCatalog {
			task := &models.DailyTask{
				ID:       uuid.NewString(),
				UserID:   userID,
				TaskType: item.Type,
				Reward:   item.Reward,
				TaskDate: day,
			}
			if err := tx.Create(task).Error; err != nil {
				return err
			}
		}
		return nil
	})
	// a concurrent first request may have won the race on the unique index;
	// the re-read below picks up whoever's rows landed
	if err != nil && !isUniqueViolation(err) {
		return nil, err
	}

	if err := s.DB.Where("user_id = ? AND task_date = ?", userID, day).
		Order("task_type").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Complete flips the task to completed and credits its fixed reward, in one
// transaction. The conditional update makes the second completion fail with
// no balance effect.
func (s *TaskService) Complete(userID, taskID string, now time.Time) error {
	var task models.DailyTask
	if err := s.DB.First(&task, "id = ? AND user_id = ?", taskID, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return err
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.DailyTask{}).
			Where("id = ? AND completed = ?", taskID, false).
			Updates(map[string]interface{}{
				"completed":    true,
				"completed_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrTaskCompleted
		}

		desc := fmt.Sprintf("Daily task completed - %s", task.TaskType)
		return s.Ledger.Credit(tx, userID, task.Reward, models.TransactionTypeTaskReward, desc)
	})
}

// --- Handlers ---

// GetDailyTasks lists (and on first call of the day, issues) today's tasks.
func (s *TaskService) GetDailyTasks(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	tasks, err := s.TasksForDay(userID, time.Now())
	if err != nil {
		log.Printf("DB Error fetching daily tasks: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch daily tasks"})
	}
	return c.JSON(tasks)
}

// CompleteDailyTask handles POST /daily-tasks/:id/complete.
func (s *TaskService) CompleteDailyTask(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	taskID := c.Params("id")

	if _, err := uuid.Parse(taskID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid task ID"})
	}

	if err := s.Complete(userID, taskID, time.Now()); err != nil {
		switch {
		case errors.Is(err, ErrTaskNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Task not found"})
		case errors.Is(err, ErrTaskCompleted):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Task already completed"})
		}
		log.Printf("DB Error completing task: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to complete task"})
	}

	return c.JSON(fiber.Map{"message": "Task completed successfully"})
}
