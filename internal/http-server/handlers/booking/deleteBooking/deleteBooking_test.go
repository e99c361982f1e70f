package deleteBooking

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"carvex/internal/http-server/handlers/booking/deleteBooking/mocks"
	"carvex/internal/lib/logger/handlers/slogdiscard"
	"carvex/internal/models"
	"carvex/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const bookingID = "65a1b2c3d4e5f60718293a4c"

func TestDeleteBookingHandler(t *testing.T) {
	t.Parallel()

	logger := slogdiscard.NewDiscardLogger()

	testCases := []struct {
		name           string
		bookingID      string
		mockSetup      func(m *mocks.BookingDeleter)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:      "Success",
			bookingID: bookingID,
			mockSetup: func(m *mocks.BookingDeleter) {
				m.On("DeleteBooking", mock.Anything, bookingID).
					Return(&models.Booking{ID: bookingID, CarID: "65a1b2c3d4e5f60718293a4b"}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"message":"Booking deleted successfully!"}`,
		},
		{
			name:           "Malformed id",
			bookingID:      "nope",
			mockSetup:      func(m *mocks.BookingDeleter) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"message":"Invalid Booking ID"}`,
		},
		{
			name:      "Not found",
			bookingID: bookingID,
			mockSetup: func(m *mocks.BookingDeleter) {
				m.On("DeleteBooking", mock.Anything, bookingID).
					Return(nil, fmt.Errorf("storage.mongo.DeleteBooking: %w", storage.ErrBookingNotFound))
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"message":"Booking not found"}`,
		},
		{
			name:      "Internal server error",
			bookingID: bookingID,
			mockSetup: func(m *mocks.BookingDeleter) {
				m.On("DeleteBooking", mock.Anything, bookingID).Return(nil, errors.New("transaction aborted"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"message":"Error deleting booking"}`,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			mockDeleter := mocks.NewBookingDeleter(t)
			tc.mockSetup(mockDeleter)

			router := chi.NewRouter()
			router.Delete("/bookings/{id}", New(logger, mockDeleter))

			req, err := http.NewRequest("DELETE", "/bookings/"+tc.bookingID, nil)
			require.NoError(t, err)

			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code, "Status code mismatch")
			assert.JSONEq(t, tc.expectedBody, rr.Body.String(), "Response body mismatch")
		})
	}
}
