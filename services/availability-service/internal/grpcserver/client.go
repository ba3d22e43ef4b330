package grpcserver

import (
	"context"

	"github.com/md-rashed-zaman/apptslots/services/availability-service/internal/availability"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client calls a remote availability service.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) Timetables(ctx context.Context, req availability.Request) ([]availability.DayTimetable, error) {
	in, err := RequestToStruct(req)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, GetTimetablesMethod, in, out); err != nil {
		return nil, err
	}
	return TimetablesFromStruct(out)
}
