package worker_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/stationcal/stationcal/internal/booking"
	"github.com/stationcal/stationcal/internal/worker"
)

type recordingAck struct {
	acked  int
	nacked int
}

func (a *recordingAck) Ack()  { a.acked++ }
func (a *recordingAck) Nack() { a.nacked++ }

func TestHandler_Handle(t *testing.T) {
	tests := []struct {
		name       string
		data       string
		breakFetch bool
		wantAck    int
		wantNack   int
	}{
		{"station sync", `{"job_type":"station_sync"}`, false, 1, 0},
		{"health check", `{"job_type":"health_check"}`, false, 1, 0},
		{"unknown job is dropped", `{"job_type":"reindex"}`, false, 1, 0},
		{"malformed payload", `{job_type`, false, 0, 1},
		{"failing sync is retried", `{"job_type":"station_sync"}`, true, 0, 1},
		{"failing health check is retried", `{"job_type":"health_check"}`, true, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := testSource()
			if tt.breakFetch {
				source.stationsErr = errors.New("upstream down")
			}
			job, _, _ := newJob(source)
			handler := worker.NewHandler(job, zerolog.Nop())

			ack := &recordingAck{}
			handler.Handle(context.Background(), []byte(tt.data), ack)

			assert.Equal(t, tt.wantAck, ack.acked)
			assert.Equal(t, tt.wantNack, ack.nacked)
		})
	}
}

func TestHandler_MostlyInvalidDataIsRetried(t *testing.T) {
	source := testSource()
	for _, s := range source.stations {
		s.Bookings = []*booking.Booking{{ID: "x-" + s.ID, PickupReturnStationID: s.ID, StartDate: "??", EndDate: "??"}}
	}
	source.bookings = nil
	job, _, _ := newJob(source)
	handler := worker.NewHandler(job, zerolog.Nop())

	ack := &recordingAck{}
	handler.Handle(context.Background(), []byte(`{"job_type":"station_sync"}`), ack)

	assert.Equal(t, 1, ack.nacked)
}

func TestHandler_StartWithoutSubscription(t *testing.T) {
	handler := worker.NewHandler(nil, zerolog.Nop())

	assert.Error(t, handler.Start(context.Background()))
	assert.NoError(t, handler.Close())
}
