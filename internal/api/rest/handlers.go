package rest

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"bank-settlement-engine/internal/generator"
	"bank-settlement-engine/internal/models"
	"bank-settlement-engine/internal/money"
	"bank-settlement-engine/internal/services"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	transactionService services.TransactionService
	generator          *generator.TransferGenerator
}

// Создает новые обработчики REST API
func NewHandlers(transactionService services.TransactionService) *Handlers {
	return &Handlers{
		transactionService: transactionService,
		generator:          generator.NewTransferGenerator(),
	}
}

// InitiateTransfer принимает перевод на расчёт
// @Summary Отправить перевод на расчёт
// @Description Проверяет счета и баланс без блокировок, создает транзакцию в статусе PENDING и ставит ее в очередь Kafka. Итог расчёта приходит асинхронно.
// @Tags transfers
// @Accept json
// @Produce json
// @Param transfer body models.TransferRequest true "Данные перевода"
// @Success 202 {object} models.TransferResponse "Перевод принят"
// @Security BearerAuth
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 503 {object} map[string]string "Queue unavailable"
// @Router /transfers [post]
func (h *Handlers) InitiateTransfer(c *gin.Context) {
	var req models.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.transactionService.InitiateTransfer(c.Request.Context(), currentUser(c), &req)
	if err != nil {
		c.JSON(transferErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, response)
}

func transferErrorStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidTransfer), errors.Is(err, services.ErrInsufficientFunds):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrForbiddenAccount):
		return http.StatusForbidden
	case errors.Is(err, services.ErrAccountNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrQueueUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// GetTransactionStatus возвращает статус транзакции по id
// @Summary Получить статус транзакции
// @Description Возвращает текущий статус транзакции и причину отказа, если она известна
// @Tags transactions
// @Produce json
// @Param id path int true "ID транзакции"
// @Security BearerAuth
// @Success 200 {object} models.TransactionStatusResponse "Статус транзакции"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Not Found"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /transactions/{id} [get]
func (h *Handlers) GetTransactionStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid transaction id"})
		return
	}

	status, err := h.transactionService.GetTransactionStatus(c.Request.Context(), currentUser(c), id)
	if errors.Is(err, services.ErrTransactionNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
		return
	}
	if errors.Is(err, services.ErrForbiddenTransaction) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to view this transaction"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get transaction status"})
		return
	}

	c.JSON(http.StatusOK, status)
}

// ListAudit возвращает последние записи аудита
// @Summary Журнал аудита
// @Tags audit
// @Produce json
// @Param limit query int false "Лимит результатов (максимум 500)" default(100)
// @Success 200 {object} map[string]interface{} "Записи аудита"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Security BearerAuth
// @Router /audit [get]
func (h *Handlers) ListAudit(c *gin.Context) {
	limit := 100
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 && parsed <= 500 {
			limit = parsed
		}
	}

	logs, err := h.transactionService.ListAudit(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get audit log"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"audit_logs": logs})
}

// GenerateRandomTransfer генерирует случайный перевод между указанными счетами
// @Summary Сгенерировать случайный перевод
// @Description Генерирует перевод для нагрузочного тестирования, ничего не сохраняя
// @Tags transfers
// @Produce json
// @Param accounts query string true "ID счетов через запятую"
// @Param profile query string false "small | large | overdraft" default(small)
// @Success 200 {object} models.TransferRequest "Сгенерированный перевод"
// @Failure 400 {object} map[string]string "Bad Request"
// @Security BearerAuth
// @Router /transfers/generate [get]
func (h *Handlers) GenerateRandomTransfer(c *gin.Context) {
	var accounts []int64
	for _, part := range strings.Split(c.Query("accounts"), ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err == nil && id > 0 {
			accounts = append(accounts, id)
		}
	}

	profile := c.DefaultQuery("profile", generator.ProfileSmall)
	req := h.generator.GenerateTransfer(accounts, profile, money.MustParse("1000.00"))
	if req == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least two account ids are required"})
		return
	}

	c.JSON(http.StatusOK, req)
}
