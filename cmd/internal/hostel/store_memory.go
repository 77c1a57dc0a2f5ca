package hostel

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore is a mutex-guarded Store for tests and DB-less development.
// It mirrors PostgresStore semantics, including room allocation and the
// delete cascade.
type MemoryStore struct {
	mu sync.Mutex

	students      map[string]Student
	users         map[string]memUser // user_id -> identity snapshot for joins
	rooms         map[string]Room
	marks         map[string]Attendance // key: studentID + "|" + day
	fees          map[string]Fee
	complaints    map[string]Complaint
	notifications map[string]Notification
}

type memUser struct {
	Name  string
	Email string
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		students:      make(map[string]Student),
		users:         make(map[string]memUser),
		rooms:         make(map[string]Room),
		marks:         make(map[string]Attendance),
		fees:          make(map[string]Fee),
		complaints:    make(map[string]Complaint),
		notifications: make(map[string]Notification),
	}
}

// PutUser records the identity snapshot joined into StudentDetail reads.
// PostgresStore joins the users table instead.
func (s *MemoryStore) PutUser(userID, name, email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[userID] = memUser{Name: name, Email: email}
}

func (s *MemoryStore) detailLocked(st Student) StudentDetail {
	d := StudentDetail{Student: st}
	if u, ok := s.users[st.UserID]; ok {
		d.Name, d.Email = u.Name, u.Email
	}
	if st.RoomID != nil {
		if r, ok := s.rooms[*st.RoomID]; ok {
			num := r.Number
			rt := r.Type
			d.RoomNumber, d.RoomType = &num, &rt
		}
	}
	return d
}

func (s *MemoryStore) roomOccupancyLocked(roomID string) int {
	n := 0
	for _, st := range s.students {
		if st.RoomID != nil && *st.RoomID == roomID && st.Active {
			n++
		}
	}
	return n
}

func (s *MemoryStore) refreshRoomStatusLocked(roomID string) {
	r, ok := s.rooms[roomID]
	if !ok || r.Status == RoomMaintenance {
		return
	}
	r.Status = occupancyStatus(s.roomOccupancyLocked(roomID), r.Capacity)
	s.rooms[roomID] = r
}

// CreateStudent enrolls a profile and allocates a bed.
func (s *MemoryStore) CreateStudent(ctx context.Context, in CreateStudentInput) (StudentDetail, error) {
	if err := ctx.Err(); err != nil {
		return StudentDetail{}, err
	}
	if strings.TrimSpace(in.UserID) == "" ||
		strings.TrimSpace(in.CNIC) == "" ||
		strings.TrimSpace(in.Phone) == "" ||
		strings.TrimSpace(in.Address) == "" ||
		strings.TrimSpace(in.GuardianName) == "" ||
		strings.TrimSpace(in.GuardianPhone) == "" {
		return StudentDetail{}, ErrInvalidInput
	}
	if _, ok := ParseRoomType(string(in.RoomType)); !ok {
		return StudentDetail{}, ErrInvalidInput
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cnic := strings.TrimSpace(in.CNIC)
	for _, st := range s.students {
		if st.CNIC == cnic || st.UserID == strings.TrimSpace(in.UserID) {
			return StudentDetail{}, ErrConflict
		}
	}

	// Lowest room number with a free bed, matching the Postgres ordering.
	var target *Room
	for _, r := range sortedRoomsLocked(s) {
		if r.Type != in.RoomType || r.Status == RoomFull || r.Status == RoomMaintenance {
			continue
		}
		if s.roomOccupancyLocked(r.ID) < r.Capacity {
			room := r
			target = &room
			break
		}
	}
	if target == nil {
		return StudentDetail{}, ErrNoRoomAvailable
	}

	id, err := newULID(now)
	if err != nil {
		return StudentDetail{}, err
	}
	roomID := target.ID
	st := Student{
		ID:            id,
		UserID:        strings.TrimSpace(in.UserID),
		CNIC:          cnic,
		Phone:         strings.TrimSpace(in.Phone),
		Address:       strings.TrimSpace(in.Address),
		GuardianName:  strings.TrimSpace(in.GuardianName),
		GuardianPhone: strings.TrimSpace(in.GuardianPhone),
		RoomID:        &roomID,
		Active:        true,
		EnrolledAt:    now,
		CreatedAt:     now,
	}
	s.students[id] = st
	s.refreshRoomStatusLocked(roomID)

	return s.detailLocked(st), nil
}

func sortedRoomsLocked(s *MemoryStore) []Room {
	out := make([]Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

// GetStudent returns one profile.
func (s *MemoryStore) GetStudent(ctx context.Context, id string) (StudentDetail, error) {
	if err := ctx.Err(); err != nil {
		return StudentDetail{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.students[strings.TrimSpace(id)]
	if !ok {
		return StudentDetail{}, ErrNotFound
	}
	return s.detailLocked(st), nil
}

// GetStudentByUserID resolves the profile behind a principal.
func (s *MemoryStore) GetStudentByUserID(ctx context.Context, userID string) (StudentDetail, error) {
	if err := ctx.Err(); err != nil {
		return StudentDetail{}, err
	}
	userID = strings.TrimSpace(userID)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range s.students {
		if st.UserID == userID {
			return s.detailLocked(st), nil
		}
	}
	return StudentDetail{}, ErrNotFound
}

// ListStudents returns all profiles, newest first.
func (s *MemoryStore) ListStudents(ctx context.Context) ([]StudentDetail, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]StudentDetail, 0, len(s.students))
	for _, st := range s.students {
		out = append(out, s.detailLocked(st))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// UpdateStudent applies a partial profile update.
func (s *MemoryStore) UpdateStudent(ctx context.Context, in UpdateStudentInput) (StudentDetail, error) {
	if err := ctx.Err(); err != nil {
		return StudentDetail{}, err
	}
	id := strings.TrimSpace(in.ID)
	if id == "" {
		return StudentDetail{}, ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.students[id]
	if !ok {
		return StudentDetail{}, ErrNotFound
	}
	if v := trimPtr(in.CNIC); v != nil {
		for _, other := range s.students {
			if other.ID != id && other.CNIC == *v {
				return StudentDetail{}, ErrConflict
			}
		}
		st.CNIC = *v
	}
	if v := trimPtr(in.Phone); v != nil {
		st.Phone = *v
	}
	if v := trimPtr(in.Address); v != nil {
		st.Address = *v
	}
	if v := trimPtr(in.GuardianName); v != nil {
		st.GuardianName = *v
	}
	if v := trimPtr(in.GuardianPhone); v != nil {
		st.GuardianPhone = *v
	}
	s.students[id] = st

	return s.detailLocked(st), nil
}

// DeleteStudent removes the profile, frees the bed, and cascades.
func (s *MemoryStore) DeleteStudent(ctx context.Context, id string) (Student, error) {
	if err := ctx.Err(); err != nil {
		return Student{}, err
	}
	id = strings.TrimSpace(id)

	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.students[id]
	if !ok {
		return Student{}, ErrNotFound
	}
	delete(s.students, id)
	if st.RoomID != nil {
		s.refreshRoomStatusLocked(*st.RoomID)
	}

	for k, a := range s.marks {
		if a.StudentID == id {
			delete(s.marks, k)
		}
	}
	for k, f := range s.fees {
		if f.StudentID == id {
			delete(s.fees, k)
		}
	}
	for k, c := range s.complaints {
		if c.StudentID == id {
			delete(s.complaints, k)
		}
	}
	for k, n := range s.notifications {
		if n.StudentID != nil && *n.StudentID == id {
			delete(s.notifications, k)
		}
	}

	return st, nil
}

// CreateRoom inserts a room.
func (s *MemoryStore) CreateRoom(ctx context.Context, in CreateRoomInput) (Room, error) {
	if err := ctx.Err(); err != nil {
		return Room{}, err
	}
	number := strings.TrimSpace(in.Number)
	if number == "" || in.Capacity < 1 || in.Capacity > 4 || in.Price < 0 || in.Floor < 0 {
		return Room{}, ErrInvalidInput
	}
	if _, ok := ParseRoomType(string(in.Type)); !ok {
		return Room{}, ErrInvalidInput
	}
	status := in.Status
	if status == "" {
		status = RoomAvailable
	}
	if _, ok := ParseRoomStatus(string(status)); !ok {
		return Room{}, ErrInvalidInput
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.rooms {
		if r.Number == number {
			return Room{}, ErrConflict
		}
	}

	id, err := newULID(now)
	if err != nil {
		return Room{}, err
	}
	r := Room{
		ID: id, Number: number, Type: in.Type, Capacity: in.Capacity,
		Price: in.Price, Floor: in.Floor, Status: status, CreatedAt: now,
	}
	s.rooms[id] = r
	return r, nil
}

// ListRooms returns all rooms with occupancy, ordered by number.
func (s *MemoryStore) ListRooms(ctx context.Context) ([]Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	out := sortedRoomsLocked(s)
	for i := range out {
		out[i].Occupied = s.roomOccupancyLocked(out[i].ID)
	}
	return out, nil
}

func markKey(studentID string, day time.Time) string {
	return studentID + "|" + day.Format("2006-01-02")
}

// MarkAttendance upserts a day's roll call.
func (s *MemoryStore) MarkAttendance(ctx context.Context, in MarkAttendanceInput) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if in.Date.IsZero() || strings.TrimSpace(in.MarkedBy) == "" || len(in.Marks) == 0 {
		return 0, ErrInvalidInput
	}
	for _, m := range in.Marks {
		if strings.TrimSpace(m.StudentID) == "" {
			return 0, ErrInvalidInput
		}
		if _, ok := ParseAttendanceStatus(string(m.Status)); !ok {
			return 0, ErrInvalidInput
		}
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	day := DateOnly(in.Date)

	s.mu.Lock()
	defer s.mu.Unlock()

	written := 0
	for _, m := range in.Marks {
		studentID := strings.TrimSpace(m.StudentID)
		key := markKey(studentID, day)
		if existing, ok := s.marks[key]; ok {
			existing.Status = m.Status
			existing.MarkedBy = strings.TrimSpace(in.MarkedBy)
			existing.Remarks = trimPtr(m.Remarks)
			s.marks[key] = existing
			written++
			continue
		}
		id, err := newULID(now)
		if err != nil {
			return 0, err
		}
		s.marks[key] = Attendance{
			ID:        id,
			StudentID: studentID,
			Date:      day,
			Status:    m.Status,
			MarkedBy:  strings.TrimSpace(in.MarkedBy),
			Remarks:   trimPtr(m.Remarks),
			CreatedAt: now,
		}
		written++
	}
	return written, nil
}

// ListAttendanceByDate returns the roll call for one day.
func (s *MemoryStore) ListAttendanceByDate(ctx context.Context, date time.Time) ([]Attendance, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if date.IsZero() {
		return nil, ErrInvalidInput
	}
	day := DateOnly(date)

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Attendance, 0, 32)
	for _, a := range s.marks {
		if a.Date.Equal(day) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StudentID < out[j].StudentID })
	return out, nil
}

// ListAttendanceByStudent returns one student's history, newest first.
func (s *MemoryStore) ListAttendanceByStudent(ctx context.Context, studentID string) ([]Attendance, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	studentID = strings.TrimSpace(studentID)
	if studentID == "" {
		return nil, ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Attendance, 0, 32)
	for _, a := range s.marks {
		if a.StudentID == studentID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

// CreateFee inserts a monthly charge.
func (s *MemoryStore) CreateFee(ctx context.Context, in CreateFeeInput) (Fee, error) {
	if err := ctx.Err(); err != nil {
		return Fee{}, err
	}
	studentID := strings.TrimSpace(in.StudentID)
	if studentID == "" || in.Month < 1 || in.Month > 12 || in.Year < 2000 || in.Amount < 0 || in.DueDate.IsZero() {
		return Fee{}, ErrInvalidInput
	}
	status := in.Status
	if status == "" {
		status = FeeUnpaid
	}
	if _, ok := ParseFeeStatus(string(status)); !ok {
		return Fee{}, ErrInvalidInput
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, f := range s.fees {
		if f.StudentID == studentID && f.Month == in.Month && f.Year == in.Year {
			return Fee{}, ErrConflict
		}
	}

	id, err := newULID(now)
	if err != nil {
		return Fee{}, err
	}
	f := Fee{
		ID: id, StudentID: studentID, Month: in.Month, Year: in.Year,
		Amount: in.Amount, Status: status, DueDate: in.DueDate, CreatedAt: now,
	}
	s.fees[id] = f
	return f, nil
}

// ListFeesByStudent returns a student's charges, latest period first.
func (s *MemoryStore) ListFeesByStudent(ctx context.Context, studentID string) ([]Fee, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	studentID = strings.TrimSpace(studentID)
	if studentID == "" {
		return nil, ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Fee, 0, 12)
	for _, f := range s.fees {
		if f.StudentID == studentID {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year > out[j].Year
		}
		return out[i].Month > out[j].Month
	})
	return out, nil
}

// CreateComplaint files a complaint in state "pending".
func (s *MemoryStore) CreateComplaint(ctx context.Context, in CreateComplaintInput) (Complaint, error) {
	if err := ctx.Err(); err != nil {
		return Complaint{}, err
	}
	studentID := strings.TrimSpace(in.StudentID)
	title := strings.TrimSpace(in.Title)
	desc := strings.TrimSpace(in.Description)
	if studentID == "" || title == "" || desc == "" {
		return Complaint{}, ErrInvalidInput
	}
	category, ok := ParseComplaintCategory(string(in.Category))
	if !ok {
		return Complaint{}, ErrInvalidInput
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := newULID(now)
	if err != nil {
		return Complaint{}, err
	}
	c := Complaint{
		ID: id, StudentID: studentID, Category: category,
		Title: title, Description: desc, Status: ComplaintPending, CreatedAt: now,
	}
	s.complaints[id] = c
	return c, nil
}

// ListComplaints returns all complaints with filer identity, newest first.
func (s *MemoryStore) ListComplaints(ctx context.Context) ([]ComplaintDetail, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]ComplaintDetail, 0, len(s.complaints))
	for _, c := range s.complaints {
		d := ComplaintDetail{Complaint: c}
		if st, ok := s.students[c.StudentID]; ok {
			if u, ok := s.users[st.UserID]; ok {
				d.StudentName, d.StudentEmail = u.Name, u.Email
			}
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// ListComplaintsByStudent returns one student's complaints, newest first.
func (s *MemoryStore) ListComplaintsByStudent(ctx context.Context, studentID string) ([]Complaint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	studentID = strings.TrimSpace(studentID)
	if studentID == "" {
		return nil, ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Complaint, 0, 8)
	for _, c := range s.complaints {
		if c.StudentID == studentID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// UpdateComplaint moves a complaint to a new status.
func (s *MemoryStore) UpdateComplaint(ctx context.Context, in UpdateComplaintInput) (Complaint, error) {
	if err := ctx.Err(); err != nil {
		return Complaint{}, err
	}
	id := strings.TrimSpace(in.ID)
	if id == "" {
		return Complaint{}, ErrInvalidInput
	}
	if _, ok := ParseComplaintStatus(string(in.Status)); !ok {
		return Complaint{}, ErrInvalidInput
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.complaints[id]
	if !ok {
		return Complaint{}, ErrNotFound
	}
	c.Status = in.Status
	if v := trimPtr(in.AdminResponse); v != nil {
		c.AdminResponse = v
	}
	if in.Status == ComplaintResolved && c.ResolvedAt == nil {
		c.ResolvedAt = &now
	}
	s.complaints[id] = c
	return c, nil
}

// CreateNotification inserts an announcement.
func (s *MemoryStore) CreateNotification(ctx context.Context, in CreateNotificationInput) (Notification, error) {
	if err := ctx.Err(); err != nil {
		return Notification{}, err
	}
	title := strings.TrimSpace(in.Title)
	message := strings.TrimSpace(in.Message)
	if title == "" || message == "" {
		return Notification{}, ErrInvalidInput
	}
	if _, ok := ParseNotificationTarget(string(in.Target)); !ok {
		return Notification{}, ErrInvalidInput
	}
	studentID := trimPtr(in.StudentID)
	if in.Target == TargetSpecific && studentID == nil {
		return Notification{}, ErrInvalidInput
	}
	if in.Target == TargetAll {
		studentID = nil
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := newULID(now)
	if err != nil {
		return Notification{}, err
	}
	n := Notification{
		ID: id, Title: title, Message: message,
		Target: in.Target, StudentID: studentID, CreatedAt: now,
	}
	s.notifications[id] = n
	return n, nil
}

// ListNotificationsForStudent returns broadcasts plus targeted rows.
func (s *MemoryStore) ListNotificationsForStudent(ctx context.Context, studentID string) ([]Notification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	studentID = strings.TrimSpace(studentID)
	if studentID == "" {
		return nil, ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Notification, 0, 16)
	for _, n := range s.notifications {
		if n.Target == TargetAll || (n.StudentID != nil && *n.StudentID == studentID) {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// Stats computes the dashboard counters.
func (s *MemoryStore) Stats(ctx context.Context, now time.Time) (Stats, error) {
	if err := ctx.Err(); err != nil {
		return Stats{}, err
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}
	day := DateOnly(now)

	s.mu.Lock()
	defer s.mu.Unlock()

	var out Stats
	for _, st := range s.students {
		if st.Active {
			out.TotalStudents++
		}
	}
	out.TotalRooms = int64(len(s.rooms))
	for _, a := range s.marks {
		if a.Date.Equal(day) && a.Status == AttendancePresent {
			out.PresentToday++
		}
	}
	for _, c := range s.complaints {
		if c.Status == ComplaintPending {
			out.PendingComplaints++
		}
	}
	return out, nil
}
