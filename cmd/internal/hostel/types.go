package hostel

import "time"

// RoomType classifies rooms by comfort tier.
type RoomType string

const (
	RoomStandard RoomType = "standard"
	RoomDeluxe   RoomType = "deluxe"
	RoomSuite    RoomType = "suite"
)

// ParseRoomType validates a raw room type string.
func ParseRoomType(s string) (RoomType, bool) {
	switch RoomType(s) {
	case RoomStandard, RoomDeluxe, RoomSuite:
		return RoomType(s), true
	default:
		return "", false
	}
}

// RoomStatus tracks a room's occupancy state. "maintenance" is set by hand
// and never overwritten by occupancy recomputation.
type RoomStatus string

const (
	RoomAvailable   RoomStatus = "available"
	RoomOccupied    RoomStatus = "occupied"
	RoomFull        RoomStatus = "full"
	RoomMaintenance RoomStatus = "maintenance"
)

// ParseRoomStatus validates a raw room status string.
func ParseRoomStatus(s string) (RoomStatus, bool) {
	switch RoomStatus(s) {
	case RoomAvailable, RoomOccupied, RoomFull, RoomMaintenance:
		return RoomStatus(s), true
	default:
		return "", false
	}
}

// occupancyStatus derives the non-maintenance status from a head count.
func occupancyStatus(occupied, capacity int) RoomStatus {
	switch {
	case occupied >= capacity:
		return RoomFull
	case occupied > 0:
		return RoomOccupied
	default:
		return RoomAvailable
	}
}

// AttendanceStatus is the per-day roll-call outcome.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceLeave   AttendanceStatus = "leave"
)

// ParseAttendanceStatus validates a raw attendance status string.
func ParseAttendanceStatus(s string) (AttendanceStatus, bool) {
	switch AttendanceStatus(s) {
	case AttendancePresent, AttendanceAbsent, AttendanceLeave:
		return AttendanceStatus(s), true
	default:
		return "", false
	}
}

// FeeStatus is the payment state of a monthly fee.
type FeeStatus string

const (
	FeePaid    FeeStatus = "paid"
	FeeUnpaid  FeeStatus = "unpaid"
	FeeOverdue FeeStatus = "overdue"
)

// ParseFeeStatus validates a raw fee status string.
func ParseFeeStatus(s string) (FeeStatus, bool) {
	switch FeeStatus(s) {
	case FeePaid, FeeUnpaid, FeeOverdue:
		return FeeStatus(s), true
	default:
		return "", false
	}
}

// ComplaintStatus is the resolution state of a complaint.
type ComplaintStatus string

const (
	ComplaintPending    ComplaintStatus = "pending"
	ComplaintInProgress ComplaintStatus = "in_progress"
	ComplaintResolved   ComplaintStatus = "resolved"
)

// ParseComplaintStatus validates a raw complaint status string.
func ParseComplaintStatus(s string) (ComplaintStatus, bool) {
	switch ComplaintStatus(s) {
	case ComplaintPending, ComplaintInProgress, ComplaintResolved:
		return ComplaintStatus(s), true
	default:
		return "", false
	}
}

// ComplaintCategory groups complaints for triage.
type ComplaintCategory string

const (
	CategoryMaintenance ComplaintCategory = "maintenance"
	CategoryFood        ComplaintCategory = "food"
	CategoryFacilities  ComplaintCategory = "facilities"
	CategoryRoommate    ComplaintCategory = "roommate"
	CategoryBilling     ComplaintCategory = "billing"
	CategorySecurity    ComplaintCategory = "security"
	CategoryOther       ComplaintCategory = "other"
)

// ParseComplaintCategory validates a raw category; empty maps to "other".
func ParseComplaintCategory(s string) (ComplaintCategory, bool) {
	if s == "" {
		return CategoryOther, true
	}
	switch ComplaintCategory(s) {
	case CategoryMaintenance, CategoryFood, CategoryFacilities,
		CategoryRoommate, CategoryBilling, CategorySecurity, CategoryOther:
		return ComplaintCategory(s), true
	default:
		return "", false
	}
}

// NotificationTarget selects the audience of a notification.
type NotificationTarget string

const (
	TargetAll      NotificationTarget = "all"
	TargetSpecific NotificationTarget = "specific"
)

// ParseNotificationTarget validates a raw target string.
func ParseNotificationTarget(s string) (NotificationTarget, bool) {
	switch NotificationTarget(s) {
	case TargetAll, TargetSpecific:
		return NotificationTarget(s), true
	default:
		return "", false
	}
}

// Student is the residential profile hanging off an identity user.
type Student struct {
	ID     string
	UserID string

	CNIC          string
	Phone         string
	Address       string
	GuardianName  string
	GuardianPhone string

	RoomID     *string
	Active     bool
	EnrolledAt time.Time
	CreatedAt  time.Time
}

// StudentDetail joins the profile with its user and room for read paths.
type StudentDetail struct {
	Student

	Name  string
	Email string

	RoomNumber *string
	RoomType   *RoomType
}

// Room is a physical room with derived occupancy.
type Room struct {
	ID        string
	Number    string
	Type      RoomType
	Capacity  int
	Price     int64
	Floor     int
	Status    RoomStatus
	Occupied  int
	CreatedAt time.Time
}

// Attendance is one student's roll-call entry for one calendar day.
type Attendance struct {
	ID        string
	StudentID string
	Date      time.Time
	Status    AttendanceStatus
	MarkedBy  string
	Remarks   *string
	CreatedAt time.Time
}

// Fee is one student's charge for one calendar month.
type Fee struct {
	ID        string
	StudentID string
	Month     int
	Year      int
	Amount    int64
	Status    FeeStatus
	DueDate   time.Time
	PaidDate  *time.Time
	CreatedAt time.Time
}

// Complaint is a student-filed issue tracked to resolution.
type Complaint struct {
	ID          string
	StudentID   string
	Category    ComplaintCategory
	Title       string
	Description string
	Status      ComplaintStatus

	AdminResponse *string
	ResolvedAt    *time.Time
	CreatedAt     time.Time
}

// ComplaintDetail joins a complaint with the filing student's identity.
type ComplaintDetail struct {
	Complaint

	StudentName  string
	StudentEmail string
}

// Notification is a broadcast or targeted announcement.
type Notification struct {
	ID        string
	Title     string
	Message   string
	Target    NotificationTarget
	StudentID *string
	CreatedAt time.Time
}

// Stats are the admin dashboard counters.
type Stats struct {
	TotalStudents     int64
	TotalRooms        int64
	PresentToday      int64
	PendingComplaints int64
}
