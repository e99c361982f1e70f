package getUserBookings

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"carvex/internal/http-server/handlers/booking/getUserBookings/mocks"
	"carvex/internal/lib/logger/handlers/slogdiscard"
	"carvex/internal/models"
	"carvex/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestGetUserBookingsHandler(t *testing.T) {
	t.Parallel()

	logger := slogdiscard.NewDiscardLogger()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	testBookings := []models.Booking{
		{
			ID:         "65a1b2c3d4e5f60718293a4c",
			CarID:      "65a1b2c3d4e5f60718293a4b",
			CarModel:   "Civic",
			UserEmail:  "user@example.com",
			StartDate:  start,
			EndDate:    start.Add(48 * time.Hour),
			Status:     models.StatusPending,
			TotalPrice: 200,
		},
	}

	testCases := []struct {
		name           string
		path           string
		mockSetup      func(m *mocks.BookingsGetter)
		expectedStatus int
		expectedBody   string
		checkBody      func(t *testing.T, body string)
	}{
		{
			name: "Success",
			path: "/bookings/user/user@example.com",
			mockSetup: func(m *mocks.BookingsGetter) {
				m.On("GetBookingsByUser", mock.Anything, "user@example.com", storage.DefaultPage()).Return(testBookings, nil)
			},
			expectedStatus: http.StatusOK,
			checkBody: func(t *testing.T, body string) {
				var bookings []models.Booking
				require.NoError(t, json.Unmarshal([]byte(body), &bookings))
				require.Len(t, bookings, 1)
				assert.Equal(t, testBookings[0], bookings[0])
			},
		},
		{
			name: "No bookings",
			path: "/bookings/user/nobody@example.com",
			mockSetup: func(m *mocks.BookingsGetter) {
				m.On("GetBookingsByUser", mock.Anything, "nobody@example.com", storage.DefaultPage()).Return(nil, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `[]`,
		},
		{
			name: "Escaped email",
			path: "/bookings/user/user%2Btag@example.com",
			mockSetup: func(m *mocks.BookingsGetter) {
				m.On("GetBookingsByUser", mock.Anything, "user+tag@example.com", storage.DefaultPage()).Return(nil, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `[]`,
		},
		{
			name: "Literal percent is decoded once",
			path: "/bookings/user/a%2541b@x.com",
			mockSetup: func(m *mocks.BookingsGetter) {
				m.On("GetBookingsByUser", mock.Anything, "a%41b@x.com", storage.DefaultPage()).Return(nil, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `[]`,
		},
		{
			name:           "Invalid pagination",
			path:           "/bookings/user/user@example.com?limit=0",
			mockSetup:      func(m *mocks.BookingsGetter) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"message":"invalid pagination parameters"}`,
		},
		{
			name: "Internal server error",
			path: "/bookings/user/user@example.com",
			mockSetup: func(m *mocks.BookingsGetter) {
				m.On("GetBookingsByUser", mock.Anything, "user@example.com", storage.DefaultPage()).Return(nil, errors.New("database error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"message":"Error fetching bookings"}`,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			mockGetter := mocks.NewBookingsGetter(t)
			tc.mockSetup(mockGetter)

			router := chi.NewRouter()
			router.Get("/bookings/user/{email}", New(logger, mockGetter))

			req, err := http.NewRequest("GET", tc.path, nil)
			require.NoError(t, err)

			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code, "Status code mismatch")

			if tc.expectedBody != "" {
				assert.JSONEq(t, tc.expectedBody, rr.Body.String(), "Response body mismatch")
			} else if tc.checkBody != nil {
				tc.checkBody(t, rr.Body.String())
			}
		})
	}
}
