// Package bootstrap assembles the command and query buses shared by the HTTP
// server and the tests that drive it.
package bootstrap

import (
	"log/slog"
	"time"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	bookingapp "staybook/internal/app/handlers/booking"
	reviewsapp "staybook/internal/app/handlers/reviews"
	roomsapp "staybook/internal/app/handlers/rooms"
	usersapp "staybook/internal/app/handlers/users"
	"staybook/internal/app/middleware"
	"staybook/internal/app/outbox"
	"staybook/internal/app/queries"
	"staybook/internal/app/rating"
	"staybook/internal/app/uow"
	domainuser "staybook/internal/domain/user"
)

type Deps struct {
	UoWFactory  uow.UoWFactory
	Users       domainuser.Repository
	Outbox      outbox.Outbox
	Idempotency middleware.IdempotencyStore
	Uploader    roomsapp.PhotoUploader
	Encoder     outbox.EventEncoder
	Currency    string
	Logger      *slog.Logger
	Now         func() time.Time
}

type Buses struct {
	Commands commands.Bus
	Queries  queries.Bus
	Ratings  *rating.Aggregator
}

// Build registers every handler and wraps the buses in the middleware chain:
// logging, authorization, validation, idempotency, transaction, outbox flush.
func Build(d Deps) Buses {
	encoder := d.Encoder
	if encoder == nil {
		encoder = outbox.JSONEventEncoder{Headers: map[string]string{"source": "staybook"}}
	}
	ratings := rating.NewAggregator(d.UoWFactory, d.Logger)

	commandBus := commands.NewInMemoryBus()
	commands.Register[bookingapp.CreateBookingCommand, *dto.Booking](commandBus, &bookingapp.CreateBookingHandler{
		UoWFactory: d.UoWFactory,
		Outbox:     d.Outbox,
		Encoder:    encoder,
		Logger:     d.Logger,
		Now:        d.Now,
	})
	commands.Register[bookingapp.TransitionBookingCommand, *dto.Booking](commandBus, &bookingapp.TransitionBookingHandler{
		UoWFactory: d.UoWFactory,
		Outbox:     d.Outbox,
		Encoder:    encoder,
		Logger:     d.Logger,
		Now:        d.Now,
	})
	commands.Register[reviewsapp.SubmitReviewCommand, *dto.Review](commandBus, &reviewsapp.SubmitReviewHandler{
		UoWFactory: d.UoWFactory,
		Ratings:    ratings,
		Outbox:     d.Outbox,
		Encoder:    encoder,
		Logger:     d.Logger,
		Now:        d.Now,
	})
	commands.Register[reviewsapp.UpdateReviewCommand, *dto.Review](commandBus, &reviewsapp.UpdateReviewHandler{
		UoWFactory: d.UoWFactory,
		Ratings:    ratings,
		Outbox:     d.Outbox,
		Encoder:    encoder,
		Logger:     d.Logger,
		Now:        d.Now,
	})
	commands.Register[reviewsapp.DeleteReviewCommand, *dto.Review](commandBus, &reviewsapp.DeleteReviewHandler{
		UoWFactory: d.UoWFactory,
		Ratings:    ratings,
		Outbox:     d.Outbox,
		Encoder:    encoder,
		Logger:     d.Logger,
		Now:        d.Now,
	})
	commands.Register[reviewsapp.ToggleHelpfulCommand, *dto.HelpfulVote](commandBus, &reviewsapp.ToggleHelpfulHandler{
		UoWFactory: d.UoWFactory,
		Now:        d.Now,
	})
	rooms := &roomsapp.AdminHandler{
		UoWFactory:      d.UoWFactory,
		Uploader:        d.Uploader,
		Ratings:         ratings,
		DefaultCurrency: d.Currency,
		Logger:          d.Logger,
		Now:             d.Now,
	}
	rooms.Register(commandBus)

	queryBus := queries.NewInMemoryBus()
	queries.Register[bookingapp.GetBookingQuery, *dto.Booking](queryBus, &bookingapp.GetBookingHandler{UoWFactory: d.UoWFactory})
	queries.Register[bookingapp.ListUserBookingsQuery, *dto.BookingCollection](queryBus, &bookingapp.ListUserBookingsHandler{UoWFactory: d.UoWFactory})
	queries.Register[bookingapp.ListBookingsQuery, *dto.BookingCollection](queryBus, &bookingapp.ListBookingsHandler{UoWFactory: d.UoWFactory})
	queries.Register[reviewsapp.ListRoomReviewsQuery, *dto.ReviewCollection](queryBus, &reviewsapp.ListRoomReviewsHandler{UoWFactory: d.UoWFactory, Logger: d.Logger})
	queries.Register[reviewsapp.ListAuthorReviewsQuery, *dto.ReviewCollection](queryBus, &reviewsapp.ListAuthorReviewsHandler{UoWFactory: d.UoWFactory})
	queries.Register[roomsapp.GetRoomQuery, *dto.Room](queryBus, &roomsapp.GetRoomHandler{UoWFactory: d.UoWFactory})
	queries.Register[roomsapp.SearchRoomsQuery, *dto.RoomCollection](queryBus, &roomsapp.SearchRoomsHandler{UoWFactory: d.UoWFactory})
	queries.Register[usersapp.ListUsersQuery, *dto.UserCollection](queryBus, &usersapp.ListUsersHandler{Users: d.Users})

	validator := middleware.NewStructValidator()
	authorizer := middleware.AdminAuthorizer{}
	cmdMiddleware := []middleware.CommandMiddleware{
		middleware.Logging(d.Logger),
		middleware.Authorization(authorizer),
		middleware.Validation(validator),
	}
	if d.Idempotency != nil {
		cmdMiddleware = append(cmdMiddleware, middleware.Idempotency(d.Idempotency, nil))
	}
	cmdMiddleware = append(cmdMiddleware, middleware.Transaction(d.UoWFactory, nil))
	if d.Outbox != nil {
		cmdMiddleware = append(cmdMiddleware, middleware.OutboxFlush(d.Outbox))
	}

	return Buses{
		Commands: middleware.ChainCommands(commandBus, cmdMiddleware...),
		Queries: middleware.ChainQueries(queryBus,
			middleware.QueryLogging(d.Logger),
			middleware.QueryAuthorization(authorizer),
			middleware.QueryValidation(validator),
		),
		Ratings: ratings,
	}
}
