package main

import "bank-settlement-engine/internal/bootstrap/transferapi"

// @title Bank Settlement Engine API
// @version 1.0
// @description Прием переводов и асинхронный расчёт по счетам
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() { transferapi.StartTransferAPI() }
