package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"meetflow/infras/otel"
	"meetflow/infras/postgres"
	"meetflow/internal/domains/audit/model"
	gRepo "meetflow/shared/repository"
)

type AuditLog interface {
	Insert(ctx context.Context, model model.AuditLog) error
}

type TrackingEvent interface {
	Insert(ctx context.Context, model model.TrackingEvent) error
}

type auditImpl struct {
	gRepo.Repository[model.AuditLog]
}

type trackingImpl struct {
	gRepo.Repository[model.TrackingEvent]
}

func NewAuditLog(db *postgres.Connection, otel otel.Otel) AuditLog {
	return &auditImpl{
		Repository: gRepo.NewRepository[model.AuditLog](model.AuditEntityName, model.AuditTableName, model.FieldID, db, otel),
	}
}

func NewTrackingEvent(db *postgres.Connection, otel otel.Otel) TrackingEvent {
	return &trackingImpl{
		Repository: gRepo.NewRepository[model.TrackingEvent](model.TrackingEntity, model.TrackingTableName, model.FieldID, db, otel),
	}
}
