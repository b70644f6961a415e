package domain

import "time"

// Customer клиент, идентифицируется по нормализованному телефону
type Customer struct {
	ID        int64
	Name      string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Vehicle автомобиль клиента, идентифицируется по нормализованному номеру
type Vehicle struct {
	ID         int64
	Plate      string
	Model      *string
	CustomerID int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CustomerSummary клиент со статистикой для админки
type CustomerSummary struct {
	Customer
	Vehicles       []*Vehicle
	BookingsCount  int
	CompletedCount int
	TotalSpent     int64 // сумма по завершённым бронированиям
	LastVisit      *time.Time
}

// CustomersFilter фильтр списка клиентов
type CustomersFilter struct {
	Search        string // подстрока имени, телефона или номера авто
	CompletedOnly bool   // только клиенты с завершёнными бронированиями
}
