package hostelapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"gravity/cmd/identity"
	authapi "gravity/cmd/internal/auth/api"
	"gravity/cmd/internal/hostel"
)

// Publisher delivers realtime notification events. The hub implements it;
// handlers hold only this capability, never the hub itself.
type Publisher interface {
	PublishAll(event string, payload any)
	PublishAdmins(event string, payload any)
	PublishStudent(userID string, event string, payload any)
}

// Config controls hostel API behavior.
type Config struct {
	MaxBodyBytes int64
}

// DefaultConfig returns safe defaults.
func DefaultConfig() Config {
	return Config{MaxBodyBytes: 1 << 20}
}

// Handler wires the manager and student HTTP surfaces to the hostel store.
//
// Manager routes require the admin role; student routes resolve the profile
// behind the authenticated principal and only ever expose that student's
// own rows.
type Handler struct {
	log *slog.Logger
	cfg Config

	identity identity.Store
	store    hostel.Store
	verifier authapi.Verifier

	// pub is optional; nil disables realtime delivery.
	pub Publisher
}

// NewHandler constructs a hostel Handler.
func NewHandler(log *slog.Logger, cfg Config, ids identity.Store, store hostel.Store, verifier authapi.Verifier, pub Publisher) (*Handler, error) {
	if log == nil {
		log = slog.Default()
	}
	if ids == nil {
		return nil, errors.New("hostel: nil identity store")
	}
	if store == nil {
		return nil, errors.New("hostel: nil store")
	}
	if verifier == nil {
		return nil, errors.New("hostel: nil token verifier")
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 1 << 20
	}
	return &Handler{log: log, cfg: cfg, identity: ids, store: store, verifier: verifier, pub: pub}, nil
}

// Register wires hostel routes onto the provided mux.
func (h *Handler) Register(mux *http.ServeMux) {
	if h == nil || mux == nil {
		return
	}

	admin := func(fn http.HandlerFunc) http.Handler {
		return authapi.RequireRole(h.verifier, identity.RoleAdmin, fn)
	}
	student := func(fn http.HandlerFunc) http.Handler {
		return authapi.RequireRole(h.verifier, identity.RoleStudent, fn)
	}

	mux.Handle("POST /manager/students", admin(h.handleEnrollStudent))
	mux.Handle("GET /manager/students", admin(h.handleListStudents))
	mux.Handle("GET /manager/students/{id}", admin(h.handleGetStudent))
	mux.Handle("PUT /manager/students/{id}", admin(h.handleUpdateStudent))
	mux.Handle("DELETE /manager/students/{id}", admin(h.handleDeleteStudent))
	mux.Handle("POST /manager/rooms", admin(h.handleCreateRoom))
	mux.Handle("GET /manager/rooms", admin(h.handleListRooms))
	mux.Handle("POST /manager/attendance", admin(h.handleMarkAttendance))
	mux.Handle("GET /manager/attendance/{date}", admin(h.handleAttendanceByDate))
	mux.Handle("POST /manager/fees", admin(h.handleCreateFee))
	mux.Handle("GET /manager/fees/{studentId}", admin(h.handleFeesByStudent))
	mux.Handle("POST /manager/notifications", admin(h.handleSendNotification))
	mux.Handle("GET /manager/complaints", admin(h.handleListComplaints))
	mux.Handle("PUT /manager/complaints/{id}", admin(h.handleUpdateComplaint))
	mux.Handle("GET /manager/stats", admin(h.handleStats))

	mux.Handle("GET /student/profile", student(h.handleStudentProfile))
	mux.Handle("GET /student/attendance", student(h.handleStudentAttendance))
	mux.Handle("GET /student/fees", student(h.handleStudentFees))
	mux.Handle("GET /student/notifications", student(h.handleStudentNotifications))
	mux.Handle("POST /student/complaints", student(h.handleStudentCreateComplaint))
	mux.Handle("GET /student/complaints", student(h.handleStudentComplaints))
}

// ---- manager: students ----

func (h *Handler) handleEnrollStudent(w http.ResponseWriter, r *http.Request) {
	var req enrollStudentRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}

	roomType, ok := hostel.ParseRoomType(strings.TrimSpace(req.RoomType))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_request", "unknown room type")
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" ||
		strings.TrimSpace(req.Password) == "" || strings.TrimSpace(req.CNIC) == "" ||
		strings.TrimSpace(req.Phone) == "" || strings.TrimSpace(req.Address) == "" ||
		strings.TrimSpace(req.GuardianName) == "" || strings.TrimSpace(req.GuardianPhone) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "all fields are required")
		return
	}

	ctx := r.Context()
	now := time.Now().UTC()

	res, err := h.identity.CreateUser(ctx, identity.CreateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     identity.RoleStudent,
		Now:      now,
	})
	if err != nil {
		switch {
		case identity.IsConflict(err):
			writeError(w, http.StatusConflict, "conflict", "email already registered")
		case identity.IsInvalidInput(err):
			writeError(w, http.StatusBadRequest, "invalid_request", "invalid input")
		default:
			h.log.Error("hostel.enroll.create_user.fail", "err", err)
			writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		}
		return
	}

	detail, err := h.store.CreateStudent(ctx, hostel.CreateStudentInput{
		UserID:        res.User.ID,
		CNIC:          req.CNIC,
		Phone:         req.Phone,
		Address:       req.Address,
		GuardianName:  req.GuardianName,
		GuardianPhone: req.GuardianPhone,
		RoomType:      roomType,
		Now:           now,
	})
	if err != nil {
		// Roll the orphaned account back; enrollment is all-or-nothing.
		if delErr := h.identity.DeleteUser(ctx, res.User.ID); delErr != nil {
			h.log.Error("hostel.enroll.rollback_user.fail", "err", delErr, "user_id", res.User.ID)
		}
		switch {
		case errors.Is(err, hostel.ErrNoRoomAvailable):
			writeError(w, http.StatusConflict, "no_room_available", "no vacant room of this type")
		case errors.Is(err, hostel.ErrConflict):
			writeError(w, http.StatusConflict, "conflict", "cnic already registered")
		case errors.Is(err, hostel.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "invalid_request", "invalid input")
		default:
			h.log.Error("hostel.enroll.create_student.fail", "err", err)
			writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		}
		return
	}

	h.log.Info("hostel.student.enrolled", "student_id", detail.ID, "room", deref(detail.RoomNumber))
	writeJSON(w, http.StatusCreated, toStudentResponse(detail))
}

func (h *Handler) handleListStudents(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.ListStudents(r.Context())
	if err != nil {
		h.log.Error("hostel.students.list.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}
	items := make([]studentResponse, 0, len(list))
	for _, d := range list {
		items = append(items, toStudentResponse(d))
	}
	writeJSON(w, http.StatusOK, studentListResponse{Students: items})
}

func (h *Handler) handleGetStudent(w http.ResponseWriter, r *http.Request) {
	detail, err := h.store.GetStudent(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, hostel.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "student not found")
			return
		}
		h.log.Error("hostel.students.get.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}
	writeJSON(w, http.StatusOK, toStudentResponse(detail))
}

func (h *Handler) handleUpdateStudent(w http.ResponseWriter, r *http.Request) {
	var req updateStudentRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}

	ctx := r.Context()
	id := r.PathValue("id")

	detail, err := h.store.GetStudent(ctx, id)
	if err != nil {
		if errors.Is(err, hostel.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "student not found")
			return
		}
		h.log.Error("hostel.students.update.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	if req.Name != nil || req.Email != nil {
		if _, err := h.identity.UpdateUser(ctx, identity.UpdateUserInput{
			ID:    detail.UserID,
			Name:  req.Name,
			Email: req.Email,
		}); err != nil {
			switch {
			case identity.IsConflict(err):
				writeError(w, http.StatusConflict, "conflict", "email already in use")
			case identity.IsInvalidInput(err):
				writeError(w, http.StatusBadRequest, "invalid_request", "invalid input")
			default:
				h.log.Error("hostel.students.update_user.fail", "err", err)
				writeError(w, http.StatusInternalServerError, "server_error", "internal error")
			}
			return
		}
	}

	detail, err = h.store.UpdateStudent(ctx, hostel.UpdateStudentInput{
		ID:            id,
		CNIC:          req.CNIC,
		Phone:         req.Phone,
		Address:       req.Address,
		GuardianName:  req.GuardianName,
		GuardianPhone: req.GuardianPhone,
	})
	if err != nil {
		switch {
		case errors.Is(err, hostel.ErrConflict):
			writeError(w, http.StatusConflict, "conflict", "cnic already registered")
		case errors.Is(err, hostel.ErrNotFound):
			writeError(w, http.StatusNotFound, "not_found", "student not found")
		default:
			h.log.Error("hostel.students.update.fail", "err", err)
			writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		}
		return
	}

	writeJSON(w, http.StatusOK, toStudentResponse(detail))
}

func (h *Handler) handleDeleteStudent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	deleted, err := h.store.DeleteStudent(ctx, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, hostel.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "student not found")
			return
		}
		h.log.Error("hostel.students.delete.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	// The account goes with the profile.
	if err := h.identity.DeleteUser(ctx, deleted.UserID); err != nil && !identity.IsNotFound(err) {
		h.log.Error("hostel.students.delete_user.fail", "err", err, "user_id", deleted.UserID)
	}

	h.log.Info("hostel.student.deleted", "student_id", deleted.ID)
	w.WriteHeader(http.StatusNoContent)
}

// ---- manager: rooms ----

func (h *Handler) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}

	room, err := h.store.CreateRoom(r.Context(), hostel.CreateRoomInput{
		Number:   req.Number,
		Type:     hostel.RoomType(strings.TrimSpace(req.Type)),
		Capacity: req.Capacity,
		Price:    req.Price,
		Floor:    req.Floor,
		Status:   hostel.RoomStatus(strings.TrimSpace(req.Status)),
	})
	if err != nil {
		switch {
		case errors.Is(err, hostel.ErrConflict):
			writeError(w, http.StatusConflict, "conflict", "room number already exists")
		case errors.Is(err, hostel.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "invalid_request", "invalid input")
		default:
			h.log.Error("hostel.rooms.create.fail", "err", err)
			writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, toRoomResponse(room))
}

func (h *Handler) handleListRooms(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.ListRooms(r.Context())
	if err != nil {
		h.log.Error("hostel.rooms.list.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}
	items := make([]roomResponse, 0, len(list))
	for _, room := range list {
		items = append(items, toRoomResponse(room))
	}
	writeJSON(w, http.StatusOK, roomListResponse{Rooms: items})
}

// ---- manager: attendance ----

func (h *Handler) handleMarkAttendance(w http.ResponseWriter, r *http.Request) {
	p, ok := authapi.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing principal")
		return
	}

	var req markAttendanceRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}

	day, err := parseDay(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "date must be YYYY-MM-DD")
		return
	}
	if len(req.Records) == 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "records are required")
		return
	}

	marks := make([]hostel.AttendanceMark, 0, len(req.Records))
	for _, rec := range req.Records {
		status, ok := hostel.ParseAttendanceStatus(strings.TrimSpace(rec.Status))
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_request", "unknown attendance status")
			return
		}
		marks = append(marks, hostel.AttendanceMark{
			StudentID: rec.StudentID,
			Status:    status,
			Remarks:   rec.Remarks,
		})
	}

	written, err := h.store.MarkAttendance(r.Context(), hostel.MarkAttendanceInput{
		Date:     day,
		MarkedBy: p.ID,
		Marks:    marks,
	})
	if err != nil {
		if errors.Is(err, hostel.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, "invalid_request", "invalid input")
			return
		}
		h.log.Error("hostel.attendance.mark.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, markAttendanceResponse{Written: written})
}

func (h *Handler) handleAttendanceByDate(w http.ResponseWriter, r *http.Request) {
	day, err := parseDay(r.PathValue("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "date must be YYYY-MM-DD")
		return
	}

	list, err := h.store.ListAttendanceByDate(r.Context(), day)
	if err != nil {
		h.log.Error("hostel.attendance.list.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}
	items := make([]attendanceResponse, 0, len(list))
	for _, a := range list {
		items = append(items, toAttendanceResponse(a))
	}
	writeJSON(w, http.StatusOK, attendanceListResponse{Attendance: items})
}

// ---- manager: fees ----

func (h *Handler) handleCreateFee(w http.ResponseWriter, r *http.Request) {
	var req createFeeRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}

	due, err := parseDay(req.DueDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "due_date must be YYYY-MM-DD")
		return
	}

	fee, err := h.store.CreateFee(r.Context(), hostel.CreateFeeInput{
		StudentID: req.StudentID,
		Month:     req.Month,
		Year:      req.Year,
		Amount:    req.Amount,
		Status:    hostel.FeeStatus(strings.TrimSpace(req.Status)),
		DueDate:   due,
	})
	if err != nil {
		switch {
		case errors.Is(err, hostel.ErrConflict):
			writeError(w, http.StatusConflict, "conflict", "fee already recorded for this period")
		case errors.Is(err, hostel.ErrNotFound):
			writeError(w, http.StatusNotFound, "not_found", "student not found")
		case errors.Is(err, hostel.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "invalid_request", "invalid input")
		default:
			h.log.Error("hostel.fees.create.fail", "err", err)
			writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, toFeeResponse(fee))
}

func (h *Handler) handleFeesByStudent(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.ListFeesByStudent(r.Context(), r.PathValue("studentId"))
	if err != nil {
		h.log.Error("hostel.fees.list.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}
	items := make([]feeResponse, 0, len(list))
	for _, f := range list {
		items = append(items, toFeeResponse(f))
	}
	writeJSON(w, http.StatusOK, feeListResponse{Fees: items})
}

// ---- manager: notifications, complaints, stats ----

func (h *Handler) handleSendNotification(w http.ResponseWriter, r *http.Request) {
	var req sendNotificationRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}

	target, ok := hostel.ParseNotificationTarget(strings.TrimSpace(req.Target))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_request", `target must be "all" or "specific"`)
		return
	}

	ctx := r.Context()
	n, err := h.store.CreateNotification(ctx, hostel.CreateNotificationInput{
		Title:     req.Title,
		Message:   req.Message,
		Target:    target,
		StudentID: req.StudentID,
	})
	if err != nil {
		if errors.Is(err, hostel.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, "invalid_request", "invalid input")
			return
		}
		h.log.Error("hostel.notifications.create.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	h.publishNotification(ctx, n)
	writeJSON(w, http.StatusCreated, toNotificationResponse(n))
}

// publishNotification fans the stored row out to connected clients.
func (h *Handler) publishNotification(ctx context.Context, n hostel.Notification) {
	if h.pub == nil {
		return
	}
	payload := toNotificationResponse(n)
	switch n.Target {
	case hostel.TargetAll:
		h.pub.PublishAll("new-notification", payload)
	case hostel.TargetSpecific:
		if n.StudentID == nil {
			return
		}
		// Resolve the profile to its account for user-room delivery.
		detail, err := h.store.GetStudent(ctx, *n.StudentID)
		if err != nil {
			h.log.Warn("hostel.notifications.publish.resolve.fail", "err", err, "student_id", *n.StudentID)
			return
		}
		h.pub.PublishStudent(detail.UserID, "new-notification", payload)
	}
}

func (h *Handler) handleListComplaints(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.ListComplaints(r.Context())
	if err != nil {
		h.log.Error("hostel.complaints.list.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}
	items := make([]complaintResponse, 0, len(list))
	for _, d := range list {
		items = append(items, toComplaintDetailResponse(d))
	}
	writeJSON(w, http.StatusOK, complaintListResponse{Complaints: items})
}

func (h *Handler) handleUpdateComplaint(w http.ResponseWriter, r *http.Request) {
	var req updateComplaintRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}

	status, ok := hostel.ParseComplaintStatus(strings.TrimSpace(req.Status))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_request", "unknown complaint status")
		return
	}

	c, err := h.store.UpdateComplaint(r.Context(), hostel.UpdateComplaintInput{
		ID:            r.PathValue("id"),
		Status:        status,
		AdminResponse: req.AdminResponse,
	})
	if err != nil {
		if errors.Is(err, hostel.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "complaint not found")
			return
		}
		h.log.Error("hostel.complaints.update.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, toComplaintResponse(c))
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Stats(r.Context(), time.Now().UTC())
	if err != nil {
		h.log.Error("hostel.stats.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{
		TotalStudents:     stats.TotalStudents,
		TotalRooms:        stats.TotalRooms,
		PresentToday:      stats.PresentToday,
		PendingComplaints: stats.PendingComplaints,
	})
}

// ---- student surface ----

// profileForRequest resolves the student profile behind the principal.
func (h *Handler) profileForRequest(w http.ResponseWriter, r *http.Request) (hostel.StudentDetail, bool) {
	p, ok := authapi.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing principal")
		return hostel.StudentDetail{}, false
	}
	detail, err := h.store.GetStudentByUserID(r.Context(), p.ID)
	if err != nil {
		if errors.Is(err, hostel.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "student profile not found")
			return hostel.StudentDetail{}, false
		}
		h.log.Error("hostel.profile.resolve.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return hostel.StudentDetail{}, false
	}
	return detail, true
}

func (h *Handler) handleStudentProfile(w http.ResponseWriter, r *http.Request) {
	detail, ok := h.profileForRequest(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toStudentResponse(detail))
}

func (h *Handler) handleStudentAttendance(w http.ResponseWriter, r *http.Request) {
	detail, ok := h.profileForRequest(w, r)
	if !ok {
		return
	}
	list, err := h.store.ListAttendanceByStudent(r.Context(), detail.ID)
	if err != nil {
		h.log.Error("hostel.student.attendance.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}
	items := make([]attendanceResponse, 0, len(list))
	for _, a := range list {
		items = append(items, toAttendanceResponse(a))
	}
	writeJSON(w, http.StatusOK, attendanceListResponse{Attendance: items})
}

func (h *Handler) handleStudentFees(w http.ResponseWriter, r *http.Request) {
	detail, ok := h.profileForRequest(w, r)
	if !ok {
		return
	}
	list, err := h.store.ListFeesByStudent(r.Context(), detail.ID)
	if err != nil {
		h.log.Error("hostel.student.fees.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}
	items := make([]feeResponse, 0, len(list))
	for _, f := range list {
		items = append(items, toFeeResponse(f))
	}
	writeJSON(w, http.StatusOK, feeListResponse{Fees: items})
}

func (h *Handler) handleStudentNotifications(w http.ResponseWriter, r *http.Request) {
	detail, ok := h.profileForRequest(w, r)
	if !ok {
		return
	}
	list, err := h.store.ListNotificationsForStudent(r.Context(), detail.ID)
	if err != nil {
		h.log.Error("hostel.student.notifications.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}
	items := make([]notificationResponse, 0, len(list))
	for _, n := range list {
		items = append(items, toNotificationResponse(n))
	}
	writeJSON(w, http.StatusOK, notificationListResponse{Notifications: items})
}

func (h *Handler) handleStudentCreateComplaint(w http.ResponseWriter, r *http.Request) {
	detail, ok := h.profileForRequest(w, r)
	if !ok {
		return
	}

	var req createComplaintRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}
	category, ok := hostel.ParseComplaintCategory(strings.TrimSpace(req.Category))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_request", "unknown category")
		return
	}

	c, err := h.store.CreateComplaint(r.Context(), hostel.CreateComplaintInput{
		StudentID:   detail.ID,
		Category:    category,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		if errors.Is(err, hostel.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, "invalid_request", "title and description are required")
			return
		}
		h.log.Error("hostel.student.complaint.create.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	if h.pub != nil {
		h.pub.PublishAdmins("new-complaint", toComplaintResponse(c))
	}
	writeJSON(w, http.StatusCreated, toComplaintResponse(c))
}

func (h *Handler) handleStudentComplaints(w http.ResponseWriter, r *http.Request) {
	detail, ok := h.profileForRequest(w, r)
	if !ok {
		return
	}
	list, err := h.store.ListComplaintsByStudent(r.Context(), detail.ID)
	if err != nil {
		h.log.Error("hostel.student.complaints.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}
	items := make([]complaintResponse, 0, len(list))
	for _, c := range list {
		items = append(items, toComplaintResponse(c))
	}
	writeJSON(w, http.StatusOK, complaintListResponse{Complaints: items})
}

// ---- helpers ----

func parseDay(raw string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", strings.TrimSpace(raw), time.UTC)
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
