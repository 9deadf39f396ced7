package main

import "bank-settlement-engine/internal/bootstrap/settlement"

func main() { settlement.StartSettlementService() }
