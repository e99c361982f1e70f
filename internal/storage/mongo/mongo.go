package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"carvex/internal/config"
	"carvex/internal/models"
	"carvex/internal/storage"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	carsCollection     = "cars"
	bookingsCollection = "bookings"
)

type Storage struct {
	client   *mongo.Client
	cars     *mongo.Collection
	bookings *mongo.Collection
}

var _ storage.Backend = (*Storage)(nil)

type bookingDoc struct {
	ID         primitive.ObjectID `bson:"_id"`
	CarID      string             `bson:"carId"`
	CarModel   string             `bson:"carModel"`
	UserEmail  string             `bson:"userEmail"`
	StartDate  time.Time          `bson:"startDate"`
	EndDate    time.Time          `bson:"endDate"`
	Status     string             `bson:"status"`
	TotalPrice float64            `bson:"totalPrice"`
	CreatedAt  time.Time          `bson:"createdAt"`
}

func New(ctx context.Context, cfg *config.Mongo) (*Storage, error) {
	const op = "storage.mongo.New"

	serverAPI := options.ServerAPI(options.ServerAPIVersion1).
		SetStrict(true).
		SetDeprecationErrors(true)

	opts := options.Client().
		ApplyURI(cfg.ConnectionURI()).
		SetServerAPIOptions(serverAPI).
		SetTimeout(cfg.Timeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to connect to mongo: %w", op, err)
	}

	if err = client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("%s: failed to ping mongo: %w", op, err)
	}

	db := client.Database(cfg.DBName)

	if err = requireTransactions(ctx, db); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s := &Storage{
		client:   client,
		cars:     db.Collection(carsCollection),
		bookings: db.Collection(bookingsCollection),
	}

	if err = s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s, nil
}

// ErrNoTransactions is returned by New when the deployment is a standalone
// server. Booking writes need multi-document transactions.
var ErrNoTransactions = errors.New("mongo deployment does not support transactions, use a replica set or mongos")

// requireTransactions fails unless the server is a replica set member or a mongos router.
func requireTransactions(ctx context.Context, db *mongo.Database) error {
	var hello struct {
		SetName string `bson:"setName"`
		Msg     string `bson:"msg"`
	}

	if err := db.RunCommand(ctx, bson.D{{Key: "hello", Value: 1}}).Decode(&hello); err != nil {
		return fmt.Errorf("failed to inspect deployment: %w", err)
	}

	if hello.SetName == "" && hello.Msg != "isdbgrid" {
		return ErrNoTransactions
	}

	return nil
}

func (s *Storage) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Storage) ensureIndexes(ctx context.Context) error {
	_, err := s.cars.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: models.KeyCreatedAt, Value: -1}}},
		{Keys: bson.D{{Key: models.FieldEmail, Value: 1}, {Key: models.KeyCreatedAt, Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create car indexes: %w", err)
	}

	_, err = s.bookings.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userEmail", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "carId", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create booking indexes: %w", err)
	}

	return nil
}

func (s *Storage) SaveCar(ctx context.Context, car models.Car) (string, error) {
	const op = "storage.mongo.SaveCar"

	doc, err := carToDoc(car)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	oid := primitive.NewObjectID()
	doc[models.KeyID] = oid

	if _, err = s.cars.InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("%s: failed to insert car: %w", op, err)
	}

	return oid.Hex(), nil
}

func (s *Storage) GetCars(ctx context.Context, page storage.Page) ([]models.Car, error) {
	const op = "storage.mongo.GetCars"

	cars, err := s.findCars(ctx, bson.M{}, page)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return cars, nil
}

func (s *Storage) GetCarsByOwner(ctx context.Context, email string, page storage.Page) ([]models.Car, error) {
	const op = "storage.mongo.GetCarsByOwner"

	cars, err := s.findCars(ctx, bson.M{models.FieldEmail: email}, page)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return cars, nil
}

func (s *Storage) findCars(ctx context.Context, filter bson.M, page storage.Page) ([]models.Car, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: models.KeyCreatedAt, Value: -1}}).
		SetSkip(page.Offset).
		SetLimit(page.Limit)

	cursor, err := s.cars.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find cars: %w", err)
	}

	var docs []bson.M
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode cars: %w", err)
	}

	cars := make([]models.Car, 0, len(docs))
	for _, doc := range docs {
		car, err := carFromDoc(doc)
		if err != nil {
			return nil, err
		}
		cars = append(cars, car)
	}

	return cars, nil
}

func (s *Storage) GetCar(ctx context.Context, id string) (*models.Car, error) {
	const op = "storage.mongo.GetCar"

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrCarNotFound)
	}

	var doc bson.M
	err = s.cars.FindOne(ctx, bson.M{models.KeyID: oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrCarNotFound)
		}
		return nil, fmt.Errorf("%s: failed to get car: %w", op, err)
	}

	car, err := carFromDoc(doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &car, nil
}

func (s *Storage) UpdateCar(ctx context.Context, id string, fields map[string]any) (storage.UpdateResult, error) {
	const op = "storage.mongo.UpdateCar"

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return storage.UpdateResult{}, nil
	}

	res, err := s.cars.UpdateOne(ctx, bson.M{models.KeyID: oid}, bson.M{"$set": fields})
	if err != nil {
		return storage.UpdateResult{}, fmt.Errorf("%s: failed to update car: %w", op, err)
	}

	return storage.UpdateResult{Matched: res.MatchedCount, Modified: res.ModifiedCount}, nil
}

func (s *Storage) DeleteCar(ctx context.Context, id string) error {
	const op = "storage.mongo.DeleteCar"

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, storage.ErrCarNotFound)
	}

	res, err := s.cars.DeleteOne(ctx, bson.M{models.KeyID: oid})
	if err != nil {
		return fmt.Errorf("%s: failed to delete car: %w", op, err)
	}

	if res.DeletedCount == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrCarNotFound)
	}

	return nil
}

func (s *Storage) IncrementBookingCount(ctx context.Context, id string) error {
	const op = "storage.mongo.IncrementBookingCount"

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, storage.ErrCarNotFound)
	}

	res, err := s.cars.UpdateOne(ctx, bson.M{models.KeyID: oid}, incBookingCount(1))
	if err != nil {
		return fmt.Errorf("%s: failed to increment booking count: %w", op, err)
	}

	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrCarNotFound)
	}

	return nil
}

// CreateBooking inserts the booking and bumps the car counter in one transaction.
func (s *Storage) CreateBooking(ctx context.Context, booking models.Booking) (models.Booking, error) {
	const op = "storage.mongo.CreateBooking"

	carOID, err := primitive.ObjectIDFromHex(booking.CarID)
	if err != nil {
		return models.Booking{}, fmt.Errorf("%s: %w", op, storage.ErrCarNotFound)
	}

	doc := bookingToDoc(booking)
	doc.ID = primitive.NewObjectID()

	err = s.withTransaction(ctx, func(sc mongo.SessionContext) error {
		if _, err := s.bookings.InsertOne(sc, doc); err != nil {
			return fmt.Errorf("failed to insert booking: %w", err)
		}

		res, err := s.cars.UpdateOne(sc, bson.M{models.KeyID: carOID}, incBookingCount(1))
		if err != nil {
			return fmt.Errorf("failed to increment booking count: %w", err)
		}

		if res.MatchedCount == 0 {
			return storage.ErrCarNotFound
		}

		return nil
	})
	if err != nil {
		return models.Booking{}, fmt.Errorf("%s: %w", op, err)
	}

	return doc.toModel(), nil
}

func (s *Storage) GetBookingsByUser(ctx context.Context, email string, page storage.Page) ([]models.Booking, error) {
	const op = "storage.mongo.GetBookingsByUser"

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(page.Offset).
		SetLimit(page.Limit)

	cursor, err := s.bookings.Find(ctx, bson.M{"userEmail": email}, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to find bookings: %w", op, err)
	}

	var docs []bookingDoc
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%s: failed to decode bookings: %w", op, err)
	}

	bookings := make([]models.Booking, 0, len(docs))
	for _, doc := range docs {
		bookings = append(bookings, doc.toModel())
	}

	return bookings, nil
}

func (s *Storage) UpdateBookingStatus(ctx context.Context, id, status string) (storage.UpdateResult, error) {
	const op = "storage.mongo.UpdateBookingStatus"

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return storage.UpdateResult{}, nil
	}

	res, err := s.bookings.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return storage.UpdateResult{}, fmt.Errorf("%s: failed to update booking: %w", op, err)
	}

	return storage.UpdateResult{Matched: res.MatchedCount, Modified: res.ModifiedCount}, nil
}

// DeleteBooking removes the booking and decrements the counter of the car it
// referenced. The car may already be gone; the booking is removed regardless.
func (s *Storage) DeleteBooking(ctx context.Context, id string) (*models.Booking, error) {
	const op = "storage.mongo.DeleteBooking"

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrBookingNotFound)
	}

	var deleted bookingDoc

	err = s.withTransaction(ctx, func(sc mongo.SessionContext) error {
		err := s.bookings.FindOneAndDelete(sc, bson.M{"_id": oid}).Decode(&deleted)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return storage.ErrBookingNotFound
			}
			return fmt.Errorf("failed to delete booking: %w", err)
		}

		carOID, err := primitive.ObjectIDFromHex(deleted.CarID)
		if err != nil {
			return nil
		}

		filter := bson.M{models.KeyID: carOID, models.KeyBookingCount: bson.M{"$gt": 0}}
		if _, err = s.cars.UpdateOne(sc, filter, incBookingCount(-1)); err != nil {
			return fmt.Errorf("failed to decrement booking count: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	booking := deleted.toModel()

	return &booking, nil
}

// ReconcileBookingCounts recomputes every car's counter from the bookings
// collection and returns how many cars were corrected. Each car is read,
// counted and compare-and-set inside its own transaction, so a booking
// committed concurrently is never overwritten.
func (s *Storage) ReconcileBookingCounts(ctx context.Context) (int64, error) {
	const op = "storage.mongo.ReconcileBookingCounts"

	carCursor, err := s.cars.Find(ctx, bson.M{}, options.Find().SetProjection(bson.M{models.KeyID: 1}))
	if err != nil {
		return 0, fmt.Errorf("%s: failed to list cars: %w", op, err)
	}
	defer carCursor.Close(ctx)

	var ids []primitive.ObjectID
	for carCursor.Next(ctx) {
		var car struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err = carCursor.Decode(&car); err != nil {
			return 0, fmt.Errorf("%s: failed to decode car: %w", op, err)
		}
		ids = append(ids, car.ID)
	}

	if err = carCursor.Err(); err != nil {
		return 0, fmt.Errorf("%s: error iterating cars: %w", op, err)
	}

	var fixed int64
	for _, id := range ids {
		var changed bool
		err = s.withTransaction(ctx, func(sc mongo.SessionContext) error {
			var err error
			changed, err = s.reconcileCar(sc, id)
			return err
		})
		if err != nil {
			return fixed, fmt.Errorf("%s: car %s: %w", op, id.Hex(), err)
		}
		if changed {
			fixed++
		}
	}

	return fixed, nil
}

// reconcileCar sets the car's counter to its number of bookings, but only if
// the counter still holds the value read at the start.
func (s *Storage) reconcileCar(ctx context.Context, id primitive.ObjectID) (bool, error) {
	var car struct {
		BookingCount int `bson:"bookingCount"`
	}

	err := s.cars.FindOne(ctx, bson.M{models.KeyID: id},
		options.FindOne().SetProjection(bson.M{models.KeyBookingCount: 1})).Decode(&car)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read car: %w", err)
	}

	want, err := s.bookings.CountDocuments(ctx, bson.M{"carId": id.Hex()})
	if err != nil {
		return false, fmt.Errorf("failed to count bookings: %w", err)
	}

	if int64(car.BookingCount) == want {
		return false, nil
	}

	filter := bson.M{models.KeyID: id, models.KeyBookingCount: car.BookingCount}
	res, err := s.cars.UpdateOne(ctx, filter, bson.M{"$set": bson.M{models.KeyBookingCount: want}})
	if err != nil {
		return false, fmt.Errorf("failed to update booking count: %w", err)
	}

	return res.ModifiedCount > 0, nil
}

func (s *Storage) withTransaction(ctx context.Context, fn func(sc mongo.SessionContext) error) error {
	sess, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})

	return err
}

func incBookingCount(n int) bson.M {
	return bson.M{"$inc": bson.M{models.KeyBookingCount: n}}
}
