package hostel

import (
	"context"
	"time"
)

// CreateStudentInput describes admin enrollment of a student. A vacant room
// of the requested type is allocated in the same transaction as the insert.
type CreateStudentInput struct {
	UserID        string
	CNIC          string
	Phone         string
	Address       string
	GuardianName  string
	GuardianPhone string
	RoomType      RoomType
	Now           time.Time
}

// UpdateStudentInput is a partial profile update; nil fields are untouched.
type UpdateStudentInput struct {
	ID            string
	CNIC          *string
	Phone         *string
	Address       *string
	GuardianName  *string
	GuardianPhone *string
}

// CreateRoomInput describes a new room.
type CreateRoomInput struct {
	Number   string
	Type     RoomType
	Capacity int
	Price    int64
	Floor    int
	Status   RoomStatus
	Now      time.Time
}

// AttendanceMark is one student's entry in a bulk roll call.
type AttendanceMark struct {
	StudentID string
	Status    AttendanceStatus
	Remarks   *string
}

// MarkAttendanceInput upserts a day's roll call: existing (student, date)
// rows are overwritten, the rest inserted.
type MarkAttendanceInput struct {
	Date     time.Time
	MarkedBy string
	Marks    []AttendanceMark
	Now      time.Time
}

// CreateFeeInput describes a monthly charge.
type CreateFeeInput struct {
	StudentID string
	Month     int
	Year      int
	Amount    int64
	Status    FeeStatus
	DueDate   time.Time
	Now       time.Time
}

// CreateComplaintInput describes a student-filed complaint.
type CreateComplaintInput struct {
	StudentID   string
	Category    ComplaintCategory
	Title       string
	Description string
	Now         time.Time
}

// UpdateComplaintInput moves a complaint through its workflow.
type UpdateComplaintInput struct {
	ID            string
	Status        ComplaintStatus
	AdminResponse *string
	Now           time.Time
}

// CreateNotificationInput describes an announcement. StudentID is required
// iff Target is "specific".
type CreateNotificationInput struct {
	Title     string
	Message   string
	Target    NotificationTarget
	StudentID *string
	Now       time.Time
}

// Store is the hostel persistence boundary.
type Store interface {
	// CreateStudent enrolls a profile and allocates a bed atomically.
	// Returns ErrNoRoomAvailable when no room of the type has a free bed,
	// ErrConflict on duplicate cnic.
	CreateStudent(ctx context.Context, in CreateStudentInput) (StudentDetail, error)
	GetStudent(ctx context.Context, id string) (StudentDetail, error)
	GetStudentByUserID(ctx context.Context, userID string) (StudentDetail, error)
	ListStudents(ctx context.Context) ([]StudentDetail, error)
	UpdateStudent(ctx context.Context, in UpdateStudentInput) (StudentDetail, error)
	// DeleteStudent frees the bed and cascades attendance, fees,
	// complaints, and targeted notifications. Returns the removed row so
	// the caller can retire the identity account.
	DeleteStudent(ctx context.Context, id string) (Student, error)

	// CreateRoom returns ErrConflict on duplicate room number.
	CreateRoom(ctx context.Context, in CreateRoomInput) (Room, error)
	ListRooms(ctx context.Context) ([]Room, error)

	// MarkAttendance reports how many rows were written.
	MarkAttendance(ctx context.Context, in MarkAttendanceInput) (int, error)
	ListAttendanceByDate(ctx context.Context, date time.Time) ([]Attendance, error)
	ListAttendanceByStudent(ctx context.Context, studentID string) ([]Attendance, error)

	// CreateFee returns ErrConflict when the (student, month, year) charge
	// already exists.
	CreateFee(ctx context.Context, in CreateFeeInput) (Fee, error)
	ListFeesByStudent(ctx context.Context, studentID string) ([]Fee, error)

	CreateComplaint(ctx context.Context, in CreateComplaintInput) (Complaint, error)
	ListComplaints(ctx context.Context) ([]ComplaintDetail, error)
	ListComplaintsByStudent(ctx context.Context, studentID string) ([]Complaint, error)
	UpdateComplaint(ctx context.Context, in UpdateComplaintInput) (Complaint, error)

	CreateNotification(ctx context.Context, in CreateNotificationInput) (Notification, error)
	// ListNotificationsForStudent returns broadcasts plus rows targeted at
	// the student, newest first.
	ListNotificationsForStudent(ctx context.Context, studentID string) ([]Notification, error)

	Stats(ctx context.Context, now time.Time) (Stats, error)
}
