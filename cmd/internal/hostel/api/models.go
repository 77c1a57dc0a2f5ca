package hostelapi

import (
	"time"

	"gravity/cmd/internal/hostel"
)

type enrollStudentRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`

	CNIC          string `json:"cnic"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	GuardianName  string `json:"guardian_name"`
	GuardianPhone string `json:"guardian_phone"`
	RoomType      string `json:"room_type"`
}

type updateStudentRequest struct {
	Name          *string `json:"name,omitempty"`
	Email         *string `json:"email,omitempty"`
	CNIC          *string `json:"cnic,omitempty"`
	Phone         *string `json:"phone,omitempty"`
	Address       *string `json:"address,omitempty"`
	GuardianName  *string `json:"guardian_name,omitempty"`
	GuardianPhone *string `json:"guardian_phone,omitempty"`
}

type createRoomRequest struct {
	Number   string `json:"number"`
	Type     string `json:"type"`
	Capacity int    `json:"capacity"`
	Price    int64  `json:"price"`
	Floor    int    `json:"floor"`
	Status   string `json:"status,omitempty"`
}

type attendanceMarkItem struct {
	StudentID string  `json:"student_id"`
	Status    string  `json:"status"`
	Remarks   *string `json:"remarks,omitempty"`
}

type markAttendanceRequest struct {
	Date    string               `json:"date"` // YYYY-MM-DD
	Records []attendanceMarkItem `json:"records"`
}

type createFeeRequest struct {
	StudentID string `json:"student_id"`
	Month     int    `json:"month"`
	Year      int    `json:"year"`
	Amount    int64  `json:"amount"`
	Status    string `json:"status,omitempty"`
	DueDate   string `json:"due_date"` // YYYY-MM-DD
}

type sendNotificationRequest struct {
	Title     string  `json:"title"`
	Message   string  `json:"message"`
	Target    string  `json:"target"`
	StudentID *string `json:"student_id,omitempty"`
}

type createComplaintRequest struct {
	Category    string `json:"category,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type updateComplaintRequest struct {
	Status        string  `json:"status"`
	AdminResponse *string `json:"admin_response,omitempty"`
}

type studentResponse struct {
	ID            string  `json:"id"`
	UserID        string  `json:"user_id"`
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	CNIC          string  `json:"cnic"`
	Phone         string  `json:"phone"`
	Address       string  `json:"address"`
	GuardianName  string  `json:"guardian_name"`
	GuardianPhone string  `json:"guardian_phone"`
	RoomID        *string `json:"room_id,omitempty"`
	RoomNumber    *string `json:"room_number,omitempty"`
	RoomType      *string `json:"room_type,omitempty"`
	Active        bool    `json:"is_active"`

	EnrolledAt time.Time `json:"enrolled_at"`
	CreatedAt  time.Time `json:"created_at"`
}

func toStudentResponse(d hostel.StudentDetail) studentResponse {
	out := studentResponse{
		ID:            d.ID,
		UserID:        d.UserID,
		Name:          d.Name,
		Email:         d.Email,
		CNIC:          d.CNIC,
		Phone:         d.Phone,
		Address:       d.Address,
		GuardianName:  d.GuardianName,
		GuardianPhone: d.GuardianPhone,
		RoomID:        d.RoomID,
		RoomNumber:    d.RoomNumber,
		Active:        d.Active,
		EnrolledAt:    d.EnrolledAt,
		CreatedAt:     d.CreatedAt,
	}
	if d.RoomType != nil {
		rt := string(*d.RoomType)
		out.RoomType = &rt
	}
	return out
}

type studentListResponse struct {
	Students []studentResponse `json:"students"`
}

type roomResponse struct {
	ID            string    `json:"id"`
	Number        string    `json:"number"`
	Type          string    `json:"type"`
	Capacity      int       `json:"capacity"`
	Price         int64     `json:"price"`
	Floor         int       `json:"floor"`
	Status        string    `json:"status"`
	Occupied      int       `json:"occupied"`
	AvailableBeds int       `json:"available_beds"`
	CreatedAt     time.Time `json:"created_at"`
}

func toRoomResponse(r hostel.Room) roomResponse {
	return roomResponse{
		ID:            r.ID,
		Number:        r.Number,
		Type:          string(r.Type),
		Capacity:      r.Capacity,
		Price:         r.Price,
		Floor:         r.Floor,
		Status:        string(r.Status),
		Occupied:      r.Occupied,
		AvailableBeds: r.Capacity - r.Occupied,
		CreatedAt:     r.CreatedAt,
	}
}

type roomListResponse struct {
	Rooms []roomResponse `json:"rooms"`
}

type attendanceResponse struct {
	ID        string    `json:"id"`
	StudentID string    `json:"student_id"`
	Date      string    `json:"date"`
	Status    string    `json:"status"`
	MarkedBy  string    `json:"marked_by"`
	Remarks   *string   `json:"remarks,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toAttendanceResponse(a hostel.Attendance) attendanceResponse {
	return attendanceResponse{
		ID:        a.ID,
		StudentID: a.StudentID,
		Date:      a.Date.Format("2006-01-02"),
		Status:    string(a.Status),
		MarkedBy:  a.MarkedBy,
		Remarks:   a.Remarks,
		CreatedAt: a.CreatedAt,
	}
}

type attendanceListResponse struct {
	Attendance []attendanceResponse `json:"attendance"`
}

type markAttendanceResponse struct {
	Written int `json:"written"`
}

type feeResponse struct {
	ID        string     `json:"id"`
	StudentID string     `json:"student_id"`
	Month     int        `json:"month"`
	Year      int        `json:"year"`
	Amount    int64      `json:"amount"`
	Status    string     `json:"status"`
	DueDate   time.Time  `json:"due_date"`
	PaidDate  *time.Time `json:"paid_date,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func toFeeResponse(f hostel.Fee) feeResponse {
	return feeResponse{
		ID:        f.ID,
		StudentID: f.StudentID,
		Month:     f.Month,
		Year:      f.Year,
		Amount:    f.Amount,
		Status:    string(f.Status),
		DueDate:   f.DueDate,
		PaidDate:  f.PaidDate,
		CreatedAt: f.CreatedAt,
	}
}

type feeListResponse struct {
	Fees []feeResponse `json:"fees"`
}

type complaintResponse struct {
	ID            string     `json:"id"`
	StudentID     string     `json:"student_id"`
	StudentName   string     `json:"student_name,omitempty"`
	StudentEmail  string     `json:"student_email,omitempty"`
	Category      string     `json:"category"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Status        string     `json:"status"`
	AdminResponse *string    `json:"admin_response,omitempty"`
	ResolvedAt    *time.Time `json:"resolved_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func toComplaintResponse(c hostel.Complaint) complaintResponse {
	return complaintResponse{
		ID:            c.ID,
		StudentID:     c.StudentID,
		Category:      string(c.Category),
		Title:         c.Title,
		Description:   c.Description,
		Status:        string(c.Status),
		AdminResponse: c.AdminResponse,
		ResolvedAt:    c.ResolvedAt,
		CreatedAt:     c.CreatedAt,
	}
}

func toComplaintDetailResponse(d hostel.ComplaintDetail) complaintResponse {
	out := toComplaintResponse(d.Complaint)
	out.StudentName = d.StudentName
	out.StudentEmail = d.StudentEmail
	return out
}

type complaintListResponse struct {
	Complaints []complaintResponse `json:"complaints"`
}

type notificationResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Target    string    `json:"target"`
	StudentID *string   `json:"student_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toNotificationResponse(n hostel.Notification) notificationResponse {
	return notificationResponse{
		ID:        n.ID,
		Title:     n.Title,
		Message:   n.Message,
		Target:    string(n.Target),
		StudentID: n.StudentID,
		CreatedAt: n.CreatedAt,
	}
}

type notificationListResponse struct {
	Notifications []notificationResponse `json:"notifications"`
}

type statsResponse struct {
	TotalStudents     int64 `json:"total_students"`
	TotalRooms        int64 `json:"total_rooms"`
	PresentToday      int64 `json:"present_today"`
	PendingComplaints int64 `json:"pending_complaints"`
}
