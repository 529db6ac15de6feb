package service

import (
	"context"
	"fmt"
	"meetflow/internal/domains/booking/model/dto"
	"meetflow/shared/constant"
	"meetflow/shared/failure"
	"meetflow/shared/timezone"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	dayOpensAt  = 9
	dayClosesAt = 17
	slotLength  = time.Hour
)

type interval struct {
	start time.Time
	end   time.Time
}

func (i interval) overlaps(start, end time.Time) bool {
	return start.Before(i.end) && end.After(i.start)
}

// GetAvailability lists the free hourly slots of a salesperson's working day.
// Results are cached per process and may be stale for the cache TTL.
func (s *serviceImpl) GetAvailability(ctx context.Context, tenantID, salespersonID, date string) (res dto.AvailabilityResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.GetAvailability")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	salesperson, err := s.tenants.GetSalesperson(ctx, tenantID, salespersonID)
	if err != nil {
		return res, err //nolint:wrapcheck
	}

	res = dto.AvailabilityResponse{SalespersonID: salesperson.ID, Date: date}
	key := availabilityKey{tenantID: tenantID, salespersonID: salesperson.ID, date: date}

	if slots, ok := s.availability.Get(key); ok {
		res.Slots = slots

		return res, nil
	}

	loc := timezone.Location(salesperson.Timezone)

	day, err := timezone.DayStart(date, loc)
	if err != nil {
		return res, failure.BadRequestFromString("date must be formatted as YYYY-MM-DD") // nolint:wrapcheck
	}

	opens := time.Date(day.Year(), day.Month(), day.Day(), dayOpensAt, 0, 0, 0, loc)
	closes := time.Date(day.Year(), day.Month(), day.Day(), dayClosesAt, 0, 0, 0, loc)
	buffer := s.cfg.BusyBuffer()

	busy, err := s.providers.Graph.GetBusySlots(ctx, salesperson.GraphUserID, opens.Add(-buffer), closes.Add(buffer))
	if err != nil {
		log.Error().Err(err).Str("salesperson_id", salesperson.ID).Msg("failed to get busy slots")

		return res, fmt.Errorf("failed to get busy slots: %w", err)
	}

	booked, err := s.repos.Bookings.ListOverlapping(ctx, salesperson.ID, opens, closes)
	if err != nil {
		log.Error().Err(err).Str("salesperson_id", salesperson.ID).Msg("failed to list bookings")

		return res, fmt.Errorf("failed to list bookings: %w", err)
	}

	blocked := make([]interval, 0, len(busy)+len(booked))
	for _, slot := range busy {
		blocked = append(blocked, interval{start: slot.Start.Add(-buffer), end: slot.End.Add(buffer)})
	}

	for _, booking := range booked {
		blocked = append(blocked, interval{start: booking.StartAt, end: booking.EndAt})
	}

	res.Slots = freeSlots(opens, closes, blocked)
	s.availability.Set(key, res.Slots)

	return res, nil
}

func freeSlots(opens, closes time.Time, blocked []interval) []dto.Slot {
	slots := []dto.Slot{}

	for cursor := opens; cursor.Before(closes); cursor = cursor.Add(slotLength) {
		end := cursor.Add(slotLength)

		free := true

		for _, b := range blocked {
			if b.overlaps(cursor, end) {
				free = false

				break
			}
		}

		if free {
			slots = append(slots, dto.Slot{
				StartAtUTC: cursor.UTC().Format(constant.DateFormat),
				EndAtUTC:   end.UTC().Format(constant.DateFormat),
			})
		}
	}

	return slots
}
