package hostel

import (
	"context"
	"errors"
	"testing"
	"time"
)

func mustCreateRoom(t *testing.T, s *MemoryStore, number string, rt RoomType, capacity int) Room {
	t.Helper()
	r, err := s.CreateRoom(context.Background(), CreateRoomInput{
		Number: number, Type: rt, Capacity: capacity, Price: 15000, Floor: 1,
	})
	if err != nil {
		t.Fatalf("CreateRoom(%s): %v", number, err)
	}
	return r
}

func mustEnroll(t *testing.T, s *MemoryStore, userID, cnic string, rt RoomType) StudentDetail {
	t.Helper()
	d, err := s.CreateStudent(context.Background(), CreateStudentInput{
		UserID: userID, CNIC: cnic, Phone: "03001234567",
		Address: "hostel lane 1", GuardianName: "Guardian", GuardianPhone: "03007654321",
		RoomType: rt,
	})
	if err != nil {
		t.Fatalf("CreateStudent(%s): %v", userID, err)
	}
	return d
}

func TestCreateStudent_AllocatesLowestNumberedRoom(t *testing.T) {
	s := NewMemoryStore()
	mustCreateRoom(t, s, "B-201", RoomStandard, 2)
	mustCreateRoom(t, s, "A-101", RoomStandard, 2)
	s.PutUser("u1", "One", "one@example.com")

	d := mustEnroll(t, s, "u1", "1234567890123", RoomStandard)
	if d.RoomNumber == nil || *d.RoomNumber != "A-101" {
		t.Fatalf("room = %v, want A-101", d.RoomNumber)
	}
	if d.Name != "One" || d.Email != "one@example.com" {
		t.Fatalf("join = %q %q", d.Name, d.Email)
	}

	rooms, err := s.ListRooms(context.Background())
	if err != nil {
		t.Fatalf("ListRooms: %v", err)
	}
	if rooms[0].Number != "A-101" || rooms[0].Status != RoomOccupied || rooms[0].Occupied != 1 {
		t.Fatalf("room state = %+v", rooms[0])
	}
}

func TestCreateStudent_FillsRoomThenRefuses(t *testing.T) {
	s := NewMemoryStore()
	mustCreateRoom(t, s, "A-101", RoomDeluxe, 2)

	mustEnroll(t, s, "u1", "1111111111111", RoomDeluxe)
	mustEnroll(t, s, "u2", "2222222222222", RoomDeluxe)

	rooms, _ := s.ListRooms(context.Background())
	if rooms[0].Status != RoomFull {
		t.Fatalf("status = %s, want full", rooms[0].Status)
	}

	_, err := s.CreateStudent(context.Background(), CreateStudentInput{
		UserID: "u3", CNIC: "3333333333333", Phone: "03001234567",
		Address: "x", GuardianName: "g", GuardianPhone: "03007654321",
		RoomType: RoomDeluxe,
	})
	if !errors.Is(err, ErrNoRoomAvailable) {
		t.Fatalf("err = %v, want ErrNoRoomAvailable", err)
	}
}

func TestCreateStudent_DuplicateCNIC(t *testing.T) {
	s := NewMemoryStore()
	mustCreateRoom(t, s, "A-101", RoomStandard, 4)
	mustEnroll(t, s, "u1", "1234567890123", RoomStandard)

	_, err := s.CreateStudent(context.Background(), CreateStudentInput{
		UserID: "u2", CNIC: "1234567890123", Phone: "03001234567",
		Address: "x", GuardianName: "g", GuardianPhone: "03007654321",
		RoomType: RoomStandard,
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
}

func TestDeleteStudent_FreesBedAndCascades(t *testing.T) {
	s := NewMemoryStore()
	mustCreateRoom(t, s, "A-101", RoomStandard, 1)
	d := mustEnroll(t, s, "u1", "1234567890123", RoomStandard)
	ctx := context.Background()

	if _, err := s.MarkAttendance(ctx, MarkAttendanceInput{
		Date: time.Now(), MarkedBy: "admin-1",
		Marks: []AttendanceMark{{StudentID: d.ID, Status: AttendancePresent}},
	}); err != nil {
		t.Fatalf("MarkAttendance: %v", err)
	}
	if _, err := s.CreateComplaint(ctx, CreateComplaintInput{
		StudentID: d.ID, Title: "leaky tap", Description: "bathroom tap drips all night",
	}); err != nil {
		t.Fatalf("CreateComplaint: %v", err)
	}

	deleted, err := s.DeleteStudent(ctx, d.ID)
	if err != nil {
		t.Fatalf("DeleteStudent: %v", err)
	}
	if deleted.UserID != "u1" {
		t.Fatalf("deleted.UserID = %q", deleted.UserID)
	}

	rooms, _ := s.ListRooms(ctx)
	if rooms[0].Status != RoomAvailable || rooms[0].Occupied != 0 {
		t.Fatalf("room after delete = %+v", rooms[0])
	}
	if hist, _ := s.ListAttendanceByStudent(ctx, d.ID); len(hist) != 0 {
		t.Fatalf("attendance not cascaded: %d rows", len(hist))
	}
	if cs, _ := s.ListComplaints(ctx); len(cs) != 0 {
		t.Fatalf("complaints not cascaded: %d rows", len(cs))
	}

	if _, err := s.DeleteStudent(ctx, d.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: %v, want ErrNotFound", err)
	}
}

func TestMarkAttendance_UpsertOverwritesSameDay(t *testing.T) {
	s := NewMemoryStore()
	mustCreateRoom(t, s, "A-101", RoomStandard, 2)
	d := mustEnroll(t, s, "u1", "1234567890123", RoomStandard)
	ctx := context.Background()
	day := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	n, err := s.MarkAttendance(ctx, MarkAttendanceInput{
		Date: day, MarkedBy: "admin-1",
		Marks: []AttendanceMark{{StudentID: d.ID, Status: AttendanceAbsent}},
	})
	if err != nil || n != 1 {
		t.Fatalf("first mark: n=%d err=%v", n, err)
	}

	// Remarking the same day replaces the row instead of duplicating it.
	if _, err := s.MarkAttendance(ctx, MarkAttendanceInput{
		Date: day.Add(5 * time.Hour), MarkedBy: "admin-2",
		Marks: []AttendanceMark{{StudentID: d.ID, Status: AttendancePresent}},
	}); err != nil {
		t.Fatalf("second mark: %v", err)
	}

	list, err := s.ListAttendanceByDate(ctx, day)
	if err != nil {
		t.Fatalf("ListAttendanceByDate: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("rows = %d, want 1", len(list))
	}
	if list[0].Status != AttendancePresent || list[0].MarkedBy != "admin-2" {
		t.Fatalf("row = %+v", list[0])
	}
}

func TestCreateFee_UniquePerMonth(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	due := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)

	if _, err := s.CreateFee(ctx, CreateFeeInput{
		StudentID: "st-1", Month: 4, Year: 2026, Amount: 20000, DueDate: due,
	}); err != nil {
		t.Fatalf("CreateFee: %v", err)
	}
	_, err := s.CreateFee(ctx, CreateFeeInput{
		StudentID: "st-1", Month: 4, Year: 2026, Amount: 21000, DueDate: due,
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate month: %v, want ErrConflict", err)
	}

	fees, err := s.ListFeesByStudent(ctx, "st-1")
	if err != nil || len(fees) != 1 {
		t.Fatalf("fees = %d err=%v", len(fees), err)
	}
	if fees[0].Status != FeeUnpaid {
		t.Fatalf("default status = %s, want unpaid", fees[0].Status)
	}
}

func TestUpdateComplaint_ResolvedAtStampsOnce(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	c, err := s.CreateComplaint(ctx, CreateComplaintInput{
		StudentID: "st-1", Category: CategoryFood, Title: "mess menu", Description: "same dinner every day",
	})
	if err != nil {
		t.Fatalf("CreateComplaint: %v", err)
	}

	resp := "menu rotation added"
	first, err := s.UpdateComplaint(ctx, UpdateComplaintInput{
		ID: c.ID, Status: ComplaintResolved, AdminResponse: &resp,
		Now: time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("UpdateComplaint: %v", err)
	}
	if first.ResolvedAt == nil || first.AdminResponse == nil || *first.AdminResponse != resp {
		t.Fatalf("resolved = %+v", first)
	}

	second, err := s.UpdateComplaint(ctx, UpdateComplaintInput{
		ID: c.ID, Status: ComplaintResolved,
		Now: time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("second update: %v", err)
	}
	if !second.ResolvedAt.Equal(*first.ResolvedAt) {
		t.Fatalf("resolved_at overwritten: %v -> %v", first.ResolvedAt, second.ResolvedAt)
	}
}

func TestNotifications_BroadcastAndTargeted(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if _, err := s.CreateNotification(ctx, CreateNotificationInput{
		Title: "water outage", Message: "maintenance 2-4pm", Target: TargetAll,
	}); err != nil {
		t.Fatalf("broadcast: %v", err)
	}
	st1 := "st-1"
	if _, err := s.CreateNotification(ctx, CreateNotificationInput{
		Title: "fee reminder", Message: "april fee due", Target: TargetSpecific, StudentID: &st1,
	}); err != nil {
		t.Fatalf("targeted: %v", err)
	}

	// Specific without a student is rejected.
	if _, err := s.CreateNotification(ctx, CreateNotificationInput{
		Title: "x", Message: "y", Target: TargetSpecific,
	}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("missing student: %v, want ErrInvalidInput", err)
	}

	mine, err := s.ListNotificationsForStudent(ctx, "st-1")
	if err != nil || len(mine) != 2 {
		t.Fatalf("st-1 sees %d err=%v, want 2", len(mine), err)
	}
	other, err := s.ListNotificationsForStudent(ctx, "st-2")
	if err != nil || len(other) != 1 {
		t.Fatalf("st-2 sees %d err=%v, want 1", len(other), err)
	}
}

func TestStats_Counters(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	mustCreateRoom(t, s, "A-101", RoomStandard, 4)
	d1 := mustEnroll(t, s, "u1", "1111111111111", RoomStandard)
	mustEnroll(t, s, "u2", "2222222222222", RoomStandard)

	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	if _, err := s.MarkAttendance(ctx, MarkAttendanceInput{
		Date: now, MarkedBy: "admin-1",
		Marks: []AttendanceMark{{StudentID: d1.ID, Status: AttendancePresent}},
	}); err != nil {
		t.Fatalf("MarkAttendance: %v", err)
	}
	if _, err := s.CreateComplaint(ctx, CreateComplaintInput{
		StudentID: d1.ID, Title: "wifi down", Description: "no signal on floor 1",
	}); err != nil {
		t.Fatalf("CreateComplaint: %v", err)
	}

	got, err := s.Stats(ctx, now)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	want := Stats{TotalStudents: 2, TotalRooms: 1, PresentToday: 1, PendingComplaints: 1}
	if got != want {
		t.Fatalf("stats = %+v, want %+v", got, want)
	}
}
