package hostelapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"gravity/cmd/identity"
	authapi "gravity/cmd/internal/auth/api"
	"gravity/cmd/internal/auth/session"
	"gravity/cmd/internal/hostel"
)

// fakeIdentity is an in-memory identity.Store. It mirrors account writes
// into the hostel store's user snapshots so list joins produce names.
type fakeIdentity struct {
	mu      sync.Mutex
	seq     int
	byID    map[string]identity.User
	byEmail map[string]string

	hostel *hostel.MemoryStore
}

func newFakeIdentity(mem *hostel.MemoryStore) *fakeIdentity {
	return &fakeIdentity{
		byID:    make(map[string]identity.User),
		byEmail: make(map[string]string),
		hostel:  mem,
	}
}

func (f *fakeIdentity) CreateUser(ctx context.Context, in identity.CreateUserInput) (identity.CreateUserResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	norm := identity.NormalizeEmail(in.Email)
	if _, ok := f.byEmail[norm]; ok {
		return identity.CreateUserResult{}, identity.ConflictError{Field: "email"}
	}
	f.seq++
	u := identity.User{
		ID:        fmt.Sprintf("user-%d", f.seq),
		Name:      strings.TrimSpace(in.Name),
		Email:     strings.TrimSpace(in.Email),
		EmailNorm: norm,
		Role:      in.Role,
		CreatedAt: in.Now,
	}
	f.byID[u.ID] = u
	f.byEmail[norm] = u.ID
	if f.hostel != nil {
		f.hostel.PutUser(u.ID, u.Name, u.Email)
	}
	return identity.CreateUserResult{User: u}, nil
}

func (f *fakeIdentity) GetUserAuthByEmail(ctx context.Context, email string) (identity.UserAuth, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.byEmail[identity.NormalizeEmail(email)]
	if !ok {
		return identity.UserAuth{}, &identity.NotFoundError{Resource: "user"}
	}
	return identity.UserAuth{User: f.byID[id]}, nil
}

func (f *fakeIdentity) GetUserByID(ctx context.Context, id string) (identity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return identity.User{}, &identity.NotFoundError{Resource: "user"}
	}
	return u, nil
}

func (f *fakeIdentity) UpdateUser(ctx context.Context, in identity.UpdateUserInput) (identity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[in.ID]
	if !ok {
		return identity.User{}, &identity.NotFoundError{Resource: "user"}
	}
	if in.Email != nil {
		norm := identity.NormalizeEmail(*in.Email)
		if owner, taken := f.byEmail[norm]; taken && owner != u.ID {
			return identity.User{}, identity.ConflictError{Field: "email"}
		}
		delete(f.byEmail, u.EmailNorm)
		u.Email, u.EmailNorm = strings.TrimSpace(*in.Email), norm
		f.byEmail[norm] = u.ID
	}
	if in.Name != nil {
		u.Name = strings.TrimSpace(*in.Name)
	}
	f.byID[u.ID] = u
	if f.hostel != nil {
		f.hostel.PutUser(u.ID, u.Name, u.Email)
	}
	return u, nil
}

func (f *fakeIdentity) DeleteUser(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return &identity.NotFoundError{Resource: "user"}
	}
	delete(f.byID, id)
	delete(f.byEmail, u.EmailNorm)
	return nil
}

type pubEvent struct {
	UserID string
	Event  string
}

// recordPublisher captures fan-out calls for assertions.
type recordPublisher struct {
	mu        sync.Mutex
	broadcast []pubEvent
	admins    []pubEvent
	direct    []pubEvent
}

func (p *recordPublisher) PublishAll(event string, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.broadcast = append(p.broadcast, pubEvent{Event: event})
}

func (p *recordPublisher) PublishAdmins(event string, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.admins = append(p.admins, pubEvent{Event: event})
}

func (p *recordPublisher) PublishStudent(userID string, event string, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.direct = append(p.direct, pubEvent{UserID: userID, Event: event})
}

type testEnv struct {
	mux   *http.ServeMux
	ids   *fakeIdentity
	store *hostel.MemoryStore
	pub   *recordPublisher
	codec *session.JWTCodec

	adminToken string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := session.DefaultConfig()
	cfg.JWTSecret = "0123456789abcdef0123456789abcdef"
	codec, err := session.NewJWTCodec(cfg)
	if err != nil {
		t.Fatalf("NewJWTCodec: %v", err)
	}

	mem := hostel.NewMemoryStore()
	ids := newFakeIdentity(mem)
	pub := &recordPublisher{}

	h, err := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), DefaultConfig(), ids, mem, codec, pub)
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}
	mux := http.NewServeMux()
	h.Register(mux)

	admin, err := ids.CreateUser(context.Background(), identity.CreateUserInput{
		Name: "Warden", Email: "warden@example.com", Password: "unused-password", Role: identity.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	adminToken, _, err := codec.Issue(admin.User.ID, string(identity.RoleAdmin), time.Now().UTC())
	if err != nil {
		t.Fatalf("issue admin token: %v", err)
	}

	return &testEnv{mux: mux, ids: ids, store: mem, pub: pub, codec: codec, adminToken: adminToken}
}

func (env *testEnv) tokenFor(t *testing.T, email string, role identity.Role) string {
	t.Helper()
	auth, err := env.ids.GetUserAuthByEmail(context.Background(), email)
	if err != nil {
		t.Fatalf("lookup %s: %v", email, err)
	}
	token, _, err := env.codec.Issue(auth.User.ID, string(role), time.Now().UTC())
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func (env *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	env.mux.ServeHTTP(rr, req)
	return rr
}

func mustDecode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
	return out
}

func (env *testEnv) createRoom(t *testing.T, number string, roomType string, capacity int) {
	t.Helper()
	rr := env.do(t, http.MethodPost, "/manager/rooms", env.adminToken, createRoomRequest{
		Number: number, Type: roomType, Capacity: capacity, Price: 15000, Floor: 1,
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create room %s: status = %d, body %s", number, rr.Code, rr.Body.String())
	}
}

func (env *testEnv) enroll(t *testing.T, name, email string) studentResponse {
	t.Helper()
	rr := env.do(t, http.MethodPost, "/manager/students", env.adminToken, enrollStudentRequest{
		Name: name, Email: email, Password: "long-enough-password",
		CNIC: "35202-" + name, Phone: "0300-1234567", Address: "12 Canal Rd",
		GuardianName: "Parent of " + name, GuardianPhone: "0300-7654321",
		RoomType: "standard",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("enroll %s: status = %d, body %s", name, rr.Code, rr.Body.String())
	}
	return mustDecode[studentResponse](t, rr)
}

func TestEnrollStudent_CreatesAccountAndAllocatesRoom(t *testing.T) {
	env := newTestEnv(t)
	env.createRoom(t, "A-101", "standard", 2)

	got := env.enroll(t, "Hamza", "hamza@example.com")
	if got.Name != "Hamza" || got.Email != "hamza@example.com" {
		t.Fatalf("identity fields = %q %q", got.Name, got.Email)
	}
	if got.RoomNumber == nil || *got.RoomNumber != "A-101" {
		t.Fatalf("room_number = %v, want A-101", got.RoomNumber)
	}

	auth, err := env.ids.GetUserAuthByEmail(context.Background(), "hamza@example.com")
	if err != nil {
		t.Fatalf("account missing after enrollment: %v", err)
	}
	if auth.User.Role != identity.RoleStudent {
		t.Fatalf("role = %s, want student", auth.User.Role)
	}

	rr := env.do(t, http.MethodGet, "/manager/students", env.adminToken, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("list: status = %d", rr.Code)
	}
	list := mustDecode[studentListResponse](t, rr)
	if len(list.Students) != 1 {
		t.Fatalf("students = %d, want 1", len(list.Students))
	}
}

func TestEnrollStudent_NoRoomRollsBackAccount(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/manager/students", env.adminToken, enrollStudentRequest{
		Name: "Hamza", Email: "hamza@example.com", Password: "long-enough-password",
		CNIC: "35202-1", Phone: "0300-1234567", Address: "12 Canal Rd",
		GuardianName: "Parent", GuardianPhone: "0300-7654321",
		RoomType: "standard",
	})
	if rr.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409; body %s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "no_room_available") {
		t.Fatalf("body = %s", rr.Body.String())
	}

	// The half-created account must not survive a failed enrollment.
	if _, err := env.ids.GetUserAuthByEmail(context.Background(), "hamza@example.com"); !identity.IsNotFound(err) {
		t.Fatalf("account lookup after rollback: %v", err)
	}
}

func TestManagerRoutes_RequireAdminRole(t *testing.T) {
	env := newTestEnv(t)
	env.createRoom(t, "A-101", "standard", 2)
	env.enroll(t, "Hamza", "hamza@example.com")
	studentToken := env.tokenFor(t, "hamza@example.com", identity.RoleStudent)

	if rr := env.do(t, http.MethodGet, "/manager/students", studentToken, nil); rr.Code != http.StatusForbidden {
		t.Fatalf("student on manager route: status = %d, want 403", rr.Code)
	}
	if rr := env.do(t, http.MethodGet, "/manager/students", "", nil); rr.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous on manager route: status = %d, want 401", rr.Code)
	}
	if rr := env.do(t, http.MethodGet, "/student/profile", env.adminToken, nil); rr.Code != http.StatusForbidden {
		t.Fatalf("admin on student route: status = %d, want 403", rr.Code)
	}
}

func TestUpdateStudent_ChangesContactAndEmail(t *testing.T) {
	env := newTestEnv(t)
	env.createRoom(t, "A-101", "standard", 2)
	got := env.enroll(t, "Hamza", "hamza@example.com")
	env.enroll(t, "Bilal", "bilal@example.com")

	newEmail := "hamza.new@example.com"
	newPhone := "0301-0000000"
	rr := env.do(t, http.MethodPut, "/manager/students/"+got.ID, env.adminToken, updateStudentRequest{
		Email: &newEmail, Phone: &newPhone,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("update: status = %d, body %s", rr.Code, rr.Body.String())
	}
	updated := mustDecode[studentResponse](t, rr)
	if updated.Email != newEmail || updated.Phone != newPhone {
		t.Fatalf("updated = %q %q", updated.Email, updated.Phone)
	}

	taken := "bilal@example.com"
	rr = env.do(t, http.MethodPut, "/manager/students/"+got.ID, env.adminToken, updateStudentRequest{Email: &taken})
	if rr.Code != http.StatusConflict {
		t.Fatalf("duplicate email: status = %d, want 409", rr.Code)
	}
}

func TestDeleteStudent_FreesBedAndRemovesAccount(t *testing.T) {
	env := newTestEnv(t)
	env.createRoom(t, "A-101", "standard", 1)
	got := env.enroll(t, "Hamza", "hamza@example.com")

	rr := env.do(t, http.MethodDelete, "/manager/students/"+got.ID, env.adminToken, nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete: status = %d, body %s", rr.Code, rr.Body.String())
	}
	if _, err := env.ids.GetUserAuthByEmail(context.Background(), "hamza@example.com"); !identity.IsNotFound(err) {
		t.Fatalf("account lookup after delete: %v", err)
	}

	rooms := mustDecode[roomListResponse](t, env.do(t, http.MethodGet, "/manager/rooms", env.adminToken, nil))
	if len(rooms.Rooms) != 1 || rooms.Rooms[0].Occupied != 0 || rooms.Rooms[0].Status != "available" {
		t.Fatalf("room after delete = %+v", rooms.Rooms)
	}

	if rr := env.do(t, http.MethodDelete, "/manager/students/"+got.ID, env.adminToken, nil); rr.Code != http.StatusNotFound {
		t.Fatalf("second delete: status = %d, want 404", rr.Code)
	}
}

func TestAttendance_MarkAndRead(t *testing.T) {
	env := newTestEnv(t)
	env.createRoom(t, "A-101", "standard", 2)
	s1 := env.enroll(t, "Hamza", "hamza@example.com")
	s2 := env.enroll(t, "Bilal", "bilal@example.com")

	rr := env.do(t, http.MethodPost, "/manager/attendance", env.adminToken, markAttendanceRequest{
		Date: "2026-08-30",
		Records: []attendanceMarkItem{
			{StudentID: s1.ID, Status: "present"},
			{StudentID: s2.ID, Status: "absent"},
		},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("mark: status = %d, body %s", rr.Code, rr.Body.String())
	}
	if got := mustDecode[markAttendanceResponse](t, rr); got.Written != 2 {
		t.Fatalf("written = %d, want 2", got.Written)
	}

	day := mustDecode[attendanceListResponse](t, env.do(t, http.MethodGet, "/manager/attendance/2026-08-30", env.adminToken, nil))
	if len(day.Attendance) != 2 {
		t.Fatalf("day rows = %d, want 2", len(day.Attendance))
	}

	rr = env.do(t, http.MethodGet, "/manager/attendance/30-08-2026", env.adminToken, nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("bad date: status = %d, want 400", rr.Code)
	}

	studentToken := env.tokenFor(t, "hamza@example.com", identity.RoleStudent)
	mine := mustDecode[attendanceListResponse](t, env.do(t, http.MethodGet, "/student/attendance", studentToken, nil))
	if len(mine.Attendance) != 1 || mine.Attendance[0].Status != "present" || mine.Attendance[0].Date != "2026-08-30" {
		t.Fatalf("student view = %+v", mine.Attendance)
	}
}

func TestFees_RecordAndStudentView(t *testing.T) {
	env := newTestEnv(t)
	env.createRoom(t, "A-101", "standard", 2)
	s := env.enroll(t, "Hamza", "hamza@example.com")

	rr := env.do(t, http.MethodPost, "/manager/fees", env.adminToken, createFeeRequest{
		StudentID: s.ID, Month: 8, Year: 2026, Amount: 15000, DueDate: "2026-09-10",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create fee: status = %d, body %s", rr.Code, rr.Body.String())
	}
	fee := mustDecode[feeResponse](t, rr)
	if fee.Status != "unpaid" {
		t.Fatalf("fee status = %s, want unpaid", fee.Status)
	}

	// Same billing period twice is rejected.
	rr = env.do(t, http.MethodPost, "/manager/fees", env.adminToken, createFeeRequest{
		StudentID: s.ID, Month: 8, Year: 2026, Amount: 15000, DueDate: "2026-09-10",
	})
	if rr.Code != http.StatusConflict {
		t.Fatalf("duplicate period: status = %d, want 409", rr.Code)
	}

	admin := mustDecode[feeListResponse](t, env.do(t, http.MethodGet, "/manager/fees/"+s.ID, env.adminToken, nil))
	if len(admin.Fees) != 1 {
		t.Fatalf("manager fees = %d, want 1", len(admin.Fees))
	}

	studentToken := env.tokenFor(t, "hamza@example.com", identity.RoleStudent)
	mine := mustDecode[feeListResponse](t, env.do(t, http.MethodGet, "/student/fees", studentToken, nil))
	if len(mine.Fees) != 1 || mine.Fees[0].Amount != 15000 {
		t.Fatalf("student fees = %+v", mine.Fees)
	}
}

func TestNotifications_PublishAndStudentFeed(t *testing.T) {
	env := newTestEnv(t)
	env.createRoom(t, "A-101", "standard", 2)
	s1 := env.enroll(t, "Hamza", "hamza@example.com")
	env.enroll(t, "Bilal", "bilal@example.com")

	rr := env.do(t, http.MethodPost, "/manager/notifications", env.adminToken, sendNotificationRequest{
		Title: "Water outage", Message: "Block A, 2pm to 4pm", Target: "all",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("broadcast: status = %d, body %s", rr.Code, rr.Body.String())
	}

	rr = env.do(t, http.MethodPost, "/manager/notifications", env.adminToken, sendNotificationRequest{
		Title: "Fee reminder", Message: "August is due", Target: "specific", StudentID: &s1.ID,
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("targeted: status = %d, body %s", rr.Code, rr.Body.String())
	}

	env.pub.mu.Lock()
	broadcast, direct := env.pub.broadcast, env.pub.direct
	env.pub.mu.Unlock()
	if len(broadcast) != 1 || broadcast[0].Event != "new-notification" {
		t.Fatalf("broadcast events = %+v", broadcast)
	}
	if len(direct) != 1 || direct[0].Event != "new-notification" || direct[0].UserID != s1.UserID {
		t.Fatalf("direct events = %+v", direct)
	}

	hamza := env.tokenFor(t, "hamza@example.com", identity.RoleStudent)
	feed := mustDecode[notificationListResponse](t, env.do(t, http.MethodGet, "/student/notifications", hamza, nil))
	if len(feed.Notifications) != 2 {
		t.Fatalf("hamza feed = %d, want 2", len(feed.Notifications))
	}

	bilal := env.tokenFor(t, "bilal@example.com", identity.RoleStudent)
	feed = mustDecode[notificationListResponse](t, env.do(t, http.MethodGet, "/student/notifications", bilal, nil))
	if len(feed.Notifications) != 1 || feed.Notifications[0].Title != "Water outage" {
		t.Fatalf("bilal feed = %+v", feed.Notifications)
	}

	rr = env.do(t, http.MethodPost, "/manager/notifications", env.adminToken, sendNotificationRequest{
		Title: "Broken", Message: "missing student", Target: "specific",
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("specific without student: status = %d, want 400", rr.Code)
	}
}

func TestComplaint_Lifecycle(t *testing.T) {
	env := newTestEnv(t)
	env.createRoom(t, "A-101", "standard", 2)
	env.enroll(t, "Hamza", "hamza@example.com")
	studentToken := env.tokenFor(t, "hamza@example.com", identity.RoleStudent)

	rr := env.do(t, http.MethodPost, "/student/complaints", studentToken, createComplaintRequest{
		Category: "maintenance", Title: "Broken fan", Description: "Ceiling fan in A-101 stopped",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("file: status = %d, body %s", rr.Code, rr.Body.String())
	}
	filed := mustDecode[complaintResponse](t, rr)
	if filed.Status != "pending" {
		t.Fatalf("status = %s, want pending", filed.Status)
	}

	env.pub.mu.Lock()
	admins := env.pub.admins
	env.pub.mu.Unlock()
	if len(admins) != 1 || admins[0].Event != "new-complaint" {
		t.Fatalf("admin events = %+v", admins)
	}

	all := mustDecode[complaintListResponse](t, env.do(t, http.MethodGet, "/manager/complaints", env.adminToken, nil))
	if len(all.Complaints) != 1 || all.Complaints[0].StudentName != "Hamza" {
		t.Fatalf("manager view = %+v", all.Complaints)
	}

	response := "Electrician scheduled for Monday"
	rr = env.do(t, http.MethodPut, "/manager/complaints/"+filed.ID, env.adminToken, updateComplaintRequest{
		Status: "resolved", AdminResponse: &response,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("resolve: status = %d, body %s", rr.Code, rr.Body.String())
	}
	resolved := mustDecode[complaintResponse](t, rr)
	if resolved.Status != "resolved" || resolved.AdminResponse == nil || resolved.ResolvedAt == nil {
		t.Fatalf("resolved = %+v", resolved)
	}

	mine := mustDecode[complaintListResponse](t, env.do(t, http.MethodGet, "/student/complaints", studentToken, nil))
	if len(mine.Complaints) != 1 || mine.Complaints[0].Status != "resolved" {
		t.Fatalf("student view = %+v", mine.Complaints)
	}

	rr = env.do(t, http.MethodPut, "/manager/complaints/no-such-id", env.adminToken, updateComplaintRequest{Status: "resolved"})
	if rr.Code != http.StatusNotFound {
		t.Fatalf("missing complaint: status = %d, want 404", rr.Code)
	}
}

func TestStudentProfile_MissingEnrollment(t *testing.T) {
	env := newTestEnv(t)

	orphan, err := env.ids.CreateUser(context.Background(), identity.CreateUserInput{
		Name: "Ghost", Email: "ghost@example.com", Password: "long-enough-password", Role: identity.RoleStudent,
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	token, _, err := env.codec.Issue(orphan.User.ID, string(identity.RoleStudent), time.Now().UTC())
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	rr := env.do(t, http.MethodGet, "/student/profile", token, nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404; body %s", rr.Code, rr.Body.String())
	}
}

func TestStats_Counters(t *testing.T) {
	env := newTestEnv(t)
	env.createRoom(t, "A-101", "standard", 2)
	env.createRoom(t, "B-201", "deluxe", 2)
	s := env.enroll(t, "Hamza", "hamza@example.com")
	studentToken := env.tokenFor(t, "hamza@example.com", identity.RoleStudent)

	today := time.Now().UTC().Format("2006-01-02")
	if rr := env.do(t, http.MethodPost, "/manager/attendance", env.adminToken, markAttendanceRequest{
		Date:    today,
		Records: []attendanceMarkItem{{StudentID: s.ID, Status: "present"}},
	}); rr.Code != http.StatusOK {
		t.Fatalf("mark: status = %d", rr.Code)
	}
	if rr := env.do(t, http.MethodPost, "/student/complaints", studentToken, createComplaintRequest{
		Title: "Leaky tap", Description: "Washroom tap drips all night",
	}); rr.Code != http.StatusCreated {
		t.Fatalf("complaint: status = %d", rr.Code)
	}

	stats := mustDecode[statsResponse](t, env.do(t, http.MethodGet, "/manager/stats", env.adminToken, nil))
	if stats.TotalStudents != 1 || stats.TotalRooms != 2 || stats.PresentToday != 1 || stats.PendingComplaints != 1 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestCreateRoom_Validation(t *testing.T) {
	env := newTestEnv(t)
	env.createRoom(t, "A-101", "standard", 2)

	rr := env.do(t, http.MethodPost, "/manager/rooms", env.adminToken, createRoomRequest{
		Number: "A-101", Type: "standard", Capacity: 2, Price: 15000, Floor: 1,
	})
	if rr.Code != http.StatusConflict {
		t.Fatalf("duplicate number: status = %d, want 409", rr.Code)
	}

	rr = env.do(t, http.MethodPost, "/manager/rooms", env.adminToken, createRoomRequest{
		Number: "A-102", Type: "standard", Capacity: 9, Price: 15000, Floor: 1,
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("bad capacity: status = %d, want 400", rr.Code)
	}
}

// Verifier must stay satisfied by the session codec.
var _ authapi.Verifier = (*session.JWTCodec)(nil)
