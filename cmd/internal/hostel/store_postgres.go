package hostel

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
)

// PostgresStore implements hostel persistence over PostgreSQL.
//
// The pgx pool is owned by the caller; this store must not close it.
type PostgresStore struct {
	pool   *pgxpool.Pool
	schema string
}

// PostgresOption configures the store.
type PostgresOption func(*PostgresStore) error

var pgIdentRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// WithSchema sets the Postgres schema (default "gravity").
func WithSchema(schema string) PostgresOption {
	return func(s *PostgresStore) error {
		schema = strings.TrimSpace(schema)
		if schema == "" || !pgIdentRe.MatchString(schema) {
			return fmt.Errorf("hostel: invalid schema identifier")
		}
		s.schema = schema
		return nil
	}
}

// NewPostgresStore constructs a PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool, opts ...PostgresOption) (*PostgresStore, error) {
	st := &PostgresStore{pool: pool, schema: "gravity"}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(st); err != nil {
			return nil, err
		}
	}
	if st.pool == nil {
		return nil, fmt.Errorf("hostel: nil pool")
	}
	return st, nil
}

func (s *PostgresStore) table(name string) string {
	return pgx.Identifier{s.schema, name}.Sanitize()
}

// DateOnly truncates t to its UTC calendar day. Attendance is keyed by day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

const studentDetailCols = `
	s.id, s.user_id, s.cnic, s.phone, s.address,
	s.guardian_name, s.guardian_phone, s.room_id, s.is_active,
	s.enrolled_at, s.created_at,
	u.name, u.email, r.number, r.type`

func scanStudentDetail(row pgx.Row) (StudentDetail, error) {
	var (
		out      StudentDetail
		roomType *string
	)
	err := row.Scan(
		&out.ID, &out.UserID, &out.CNIC, &out.Phone, &out.Address,
		&out.GuardianName, &out.GuardianPhone, &out.RoomID, &out.Active,
		&out.EnrolledAt, &out.CreatedAt,
		&out.Name, &out.Email, &out.RoomNumber, &roomType,
	)
	if err != nil {
		return StudentDetail{}, err
	}
	if roomType != nil {
		rt := RoomType(*roomType)
		out.RoomType = &rt
	}
	return out, nil
}

// CreateStudent enrolls a profile and allocates a bed in one transaction.
func (s *PostgresStore) CreateStudent(ctx context.Context, in CreateStudentInput) (StudentDetail, error) {
	if s == nil || s.pool == nil {
		return StudentDetail{}, ErrInvalidInput
	}
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

	studentID, err := newULID(now)
	if err != nil {
		return StudentDetail{}, err
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return StudentDetail{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rooms := s.table("rooms")
	students := s.table("students")

	// Lock a room with a free bed; concurrent enrollments serialize here.
	var (
		roomID   string
		capacity int
		occupied int
	)
	err = tx.QueryRow(ctx,
		`SELECT r.id, r.capacity,
		        (SELECT COUNT(*) FROM `+students+` s
		          WHERE s.room_id = r.id AND s.is_active) AS occupied
		   FROM `+rooms+` r
		  WHERE r.type = $1
		    AND r.status NOT IN ('full', 'maintenance')
		  ORDER BY r.number
		  LIMIT 1
		    FOR UPDATE OF r`,
		string(in.RoomType),
	).Scan(&roomID, &capacity, &occupied)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return StudentDetail{}, ErrNoRoomAvailable
		}
		return StudentDetail{}, err
	}
	if occupied >= capacity {
		// Status lagged behind occupancy; repair and report no vacancy.
		_, _ = tx.Exec(ctx, `UPDATE `+rooms+` SET status = 'full' WHERE id = $1`, roomID)
		_ = tx.Commit(ctx)
		return StudentDetail{}, ErrNoRoomAvailable
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO `+students+` (
		     id, user_id, cnic, phone, address,
		     guardian_name, guardian_phone, room_id, is_active,
		     enrolled_at, created_at
		   ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE, $9, $9)`,
		studentID, strings.TrimSpace(in.UserID), strings.TrimSpace(in.CNIC),
		strings.TrimSpace(in.Phone), strings.TrimSpace(in.Address),
		strings.TrimSpace(in.GuardianName), strings.TrimSpace(in.GuardianPhone),
		roomID, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return StudentDetail{}, ErrConflict
		}
		return StudentDetail{}, err
	}

	_, err = tx.Exec(ctx,
		`UPDATE `+rooms+` SET status = $2 WHERE id = $1`,
		roomID, string(occupancyStatus(occupied+1, capacity)),
	)
	if err != nil {
		return StudentDetail{}, err
	}

	out, err := scanStudentDetail(tx.QueryRow(ctx, selectStudentDetail(s, "s.id = $1"), studentID))
	if err != nil {
		return StudentDetail{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return StudentDetail{}, err
	}
	return out, nil
}

func selectStudentDetail(s *PostgresStore, where string) string {
	return `SELECT ` + studentDetailCols + `
	   FROM ` + s.table("students") + ` s
	   JOIN ` + s.table("users") + ` u ON u.id = s.user_id
	   LEFT JOIN ` + s.table("rooms") + ` r ON r.id = s.room_id
	  WHERE ` + where
}

// GetStudent returns one profile with its user and room.
func (s *PostgresStore) GetStudent(ctx context.Context, id string) (StudentDetail, error) {
	if s == nil || s.pool == nil {
		return StudentDetail{}, ErrInvalidInput
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return StudentDetail{}, ErrInvalidInput
	}

	out, err := scanStudentDetail(s.pool.QueryRow(ctx, selectStudentDetail(s, "s.id = $1"), id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return StudentDetail{}, ErrNotFound
		}
		return StudentDetail{}, err
	}
	return out, nil
}

// GetStudentByUserID resolves the profile behind an authenticated principal.
func (s *PostgresStore) GetStudentByUserID(ctx context.Context, userID string) (StudentDetail, error) {
	if s == nil || s.pool == nil {
		return StudentDetail{}, ErrInvalidInput
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return StudentDetail{}, ErrInvalidInput
	}

	out, err := scanStudentDetail(s.pool.QueryRow(ctx, selectStudentDetail(s, "s.user_id = $1"), userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return StudentDetail{}, ErrNotFound
		}
		return StudentDetail{}, err
	}
	return out, nil
}

// ListStudents returns all profiles, newest enrollment first.
func (s *PostgresStore) ListStudents(ctx context.Context) ([]StudentDetail, error) {
	if s == nil || s.pool == nil {
		return nil, ErrInvalidInput
	}

	rows, err := s.pool.Query(ctx, selectStudentDetail(s, "TRUE")+` ORDER BY s.created_at DESC, s.id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]StudentDetail, 0, 64)
	for rows.Next() {
		d, err := scanStudentDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// UpdateStudent applies a partial profile update.
func (s *PostgresStore) UpdateStudent(ctx context.Context, in UpdateStudentInput) (StudentDetail, error) {
	if s == nil || s.pool == nil {
		return StudentDetail{}, ErrInvalidInput
	}
	id := strings.TrimSpace(in.ID)
	if id == "" {
		return StudentDetail{}, ErrInvalidInput
	}

	students := s.table("students")

	tag, err := s.pool.Exec(ctx,
		`UPDATE `+students+`
		    SET cnic           = COALESCE($2, cnic),
		        phone          = COALESCE($3, phone),
		        address        = COALESCE($4, address),
		        guardian_name  = COALESCE($5, guardian_name),
		        guardian_phone = COALESCE($6, guardian_phone)
		  WHERE id = $1`,
		id, trimPtr(in.CNIC), trimPtr(in.Phone), trimPtr(in.Address),
		trimPtr(in.GuardianName), trimPtr(in.GuardianPhone),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return StudentDetail{}, ErrConflict
		}
		return StudentDetail{}, err
	}
	if tag.RowsAffected() == 0 {
		return StudentDetail{}, ErrNotFound
	}

	return s.GetStudent(ctx, id)
}

// DeleteStudent removes the profile and frees the bed. Dependent rows go via
// FK cascade.
func (s *PostgresStore) DeleteStudent(ctx context.Context, id string) (Student, error) {
	if s == nil || s.pool == nil {
		return Student{}, ErrInvalidInput
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Student{}, ErrInvalidInput
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return Student{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	students := s.table("students")
	rooms := s.table("rooms")

	var out Student
	err = tx.QueryRow(ctx,
		`DELETE FROM `+students+`
		  WHERE id = $1
		RETURNING id, user_id, cnic, phone, address,
		          guardian_name, guardian_phone, room_id, is_active,
		          enrolled_at, created_at`,
		id,
	).Scan(
		&out.ID, &out.UserID, &out.CNIC, &out.Phone, &out.Address,
		&out.GuardianName, &out.GuardianPhone, &out.RoomID, &out.Active,
		&out.EnrolledAt, &out.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Student{}, ErrNotFound
		}
		return Student{}, err
	}

	if out.RoomID != nil {
		_, err = tx.Exec(ctx,
			`UPDATE `+rooms+` r
			    SET status = CASE
			        WHEN r.status = 'maintenance' THEN r.status
			        WHEN (SELECT COUNT(*) FROM `+students+` s
			               WHERE s.room_id = r.id AND s.is_active) = 0 THEN 'available'
			        ELSE 'occupied'
			      END
			  WHERE r.id = $1`,
			*out.RoomID,
		)
		if err != nil {
			return Student{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Student{}, err
	}
	return out, nil
}

// CreateRoom inserts a room.
func (s *PostgresStore) CreateRoom(ctx context.Context, in CreateRoomInput) (Room, error) {
	if s == nil || s.pool == nil {
		return Room{}, ErrInvalidInput
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
	roomID, err := newULID(now)
	if err != nil {
		return Room{}, err
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO `+s.table("rooms")+` (
		     id, number, type, capacity, price, floor, status, created_at
		   ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		roomID, number, string(in.Type), in.Capacity, in.Price, in.Floor, string(status), now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return Room{}, ErrConflict
		}
		return Room{}, err
	}

	return Room{
		ID: roomID, Number: number, Type: in.Type, Capacity: in.Capacity,
		Price: in.Price, Floor: in.Floor, Status: status, CreatedAt: now,
	}, nil
}

// ListRooms returns all rooms with their occupancy, ordered by number.
func (s *PostgresStore) ListRooms(ctx context.Context) ([]Room, error) {
	if s == nil || s.pool == nil {
		return nil, ErrInvalidInput
	}

	rooms := s.table("rooms")
	students := s.table("students")

	rows, err := s.pool.Query(ctx,
		`SELECT r.id, r.number, r.type, r.capacity, r.price, r.floor, r.status, r.created_at,
		        (SELECT COUNT(*) FROM `+students+` s
		          WHERE s.room_id = r.id AND s.is_active) AS occupied
		   FROM `+rooms+` r
		  ORDER BY r.number`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Room, 0, 32)
	for rows.Next() {
		var (
			r      Room
			rtype  string
			status string
		)
		if err := rows.Scan(&r.ID, &r.Number, &rtype, &r.Capacity, &r.Price,
			&r.Floor, &status, &r.CreatedAt, &r.Occupied); err != nil {
			return nil, err
		}
		r.Type, r.Status = RoomType(rtype), RoomStatus(status)
		out = append(out, r)
	}
	return out, rows.Err()
}

// MarkAttendance upserts a day's roll call in one transaction.
func (s *PostgresStore) MarkAttendance(ctx context.Context, in MarkAttendanceInput) (int, error) {
	if s == nil || s.pool == nil {
		return 0, ErrInvalidInput
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

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	attendance := s.table("attendance")
	written := 0
	for _, m := range in.Marks {
		rowID, err := newULID(now)
		if err != nil {
			return 0, err
		}
		tag, err := tx.Exec(ctx,
			`INSERT INTO `+attendance+` (
			     id, student_id, date, status, marked_by, remarks, created_at
			   ) VALUES ($1, $2, $3, $4, $5, $6, $7)
			   ON CONFLICT (student_id, date) DO UPDATE
			     SET status = EXCLUDED.status,
			         marked_by = EXCLUDED.marked_by,
			         remarks = EXCLUDED.remarks`,
			rowID, strings.TrimSpace(m.StudentID), day, string(m.Status),
			strings.TrimSpace(in.MarkedBy), trimPtr(m.Remarks), now,
		)
		if err != nil {
			return 0, err
		}
		written += int(tag.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return written, nil
}

const attendanceCols = `id, student_id, date, status, marked_by, remarks, created_at`

func scanAttendance(rows pgx.Rows) ([]Attendance, error) {
	defer rows.Close()
	out := make([]Attendance, 0, 64)
	for rows.Next() {
		var (
			a      Attendance
			status string
		)
		if err := rows.Scan(&a.ID, &a.StudentID, &a.Date, &status,
			&a.MarkedBy, &a.Remarks, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.Status = AttendanceStatus(status)
		out = append(out, a)
	}
	return out, rows.Err()
}

// ListAttendanceByDate returns the roll call for one calendar day.
func (s *PostgresStore) ListAttendanceByDate(ctx context.Context, date time.Time) ([]Attendance, error) {
	if s == nil || s.pool == nil {
		return nil, ErrInvalidInput
	}
	if date.IsZero() {
		return nil, ErrInvalidInput
	}

	rows, err := s.pool.Query(ctx,
		`SELECT `+attendanceCols+` FROM `+s.table("attendance")+`
		  WHERE date = $1 ORDER BY student_id`,
		DateOnly(date),
	)
	if err != nil {
		return nil, err
	}
	return scanAttendance(rows)
}

// ListAttendanceByStudent returns one student's history, newest first.
func (s *PostgresStore) ListAttendanceByStudent(ctx context.Context, studentID string) ([]Attendance, error) {
	if s == nil || s.pool == nil {
		return nil, ErrInvalidInput
	}
	studentID = strings.TrimSpace(studentID)
	if studentID == "" {
		return nil, ErrInvalidInput
	}

	rows, err := s.pool.Query(ctx,
		`SELECT `+attendanceCols+` FROM `+s.table("attendance")+`
		  WHERE student_id = $1 ORDER BY date DESC`,
		studentID,
	)
	if err != nil {
		return nil, err
	}
	return scanAttendance(rows)
}

// CreateFee inserts a monthly charge.
func (s *PostgresStore) CreateFee(ctx context.Context, in CreateFeeInput) (Fee, error) {
	if s == nil || s.pool == nil {
		return Fee{}, ErrInvalidInput
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
	feeID, err := newULID(now)
	if err != nil {
		return Fee{}, err
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO `+s.table("fees")+` (
		     id, student_id, month, year, amount, status, due_date, created_at
		   ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		feeID, studentID, in.Month, in.Year, in.Amount, string(status), in.DueDate, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return Fee{}, ErrConflict
		}
		return Fee{}, err
	}

	return Fee{
		ID: feeID, StudentID: studentID, Month: in.Month, Year: in.Year,
		Amount: in.Amount, Status: status, DueDate: in.DueDate, CreatedAt: now,
	}, nil
}

// ListFeesByStudent returns a student's charges, latest period first.
func (s *PostgresStore) ListFeesByStudent(ctx context.Context, studentID string) ([]Fee, error) {
	if s == nil || s.pool == nil {
		return nil, ErrInvalidInput
	}
	studentID = strings.TrimSpace(studentID)
	if studentID == "" {
		return nil, ErrInvalidInput
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, student_id, month, year, amount, status, due_date, paid_date, created_at
		   FROM `+s.table("fees")+`
		  WHERE student_id = $1
		  ORDER BY year DESC, month DESC`,
		studentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Fee, 0, 12)
	for rows.Next() {
		var (
			f      Fee
			status string
		)
		if err := rows.Scan(&f.ID, &f.StudentID, &f.Month, &f.Year, &f.Amount,
			&status, &f.DueDate, &f.PaidDate, &f.CreatedAt); err != nil {
			return nil, err
		}
		f.Status = FeeStatus(status)
		out = append(out, f)
	}
	return out, rows.Err()
}

// CreateComplaint files a complaint in state "pending".
func (s *PostgresStore) CreateComplaint(ctx context.Context, in CreateComplaintInput) (Complaint, error) {
	if s == nil || s.pool == nil {
		return Complaint{}, ErrInvalidInput
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
	complaintID, err := newULID(now)
	if err != nil {
		return Complaint{}, err
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO `+s.table("complaints")+` (
		     id, student_id, category, title, description, status, created_at
		   ) VALUES ($1, $2, $3, $4, $5, 'pending', $6)`,
		complaintID, studentID, string(category), title, desc, now,
	)
	if err != nil {
		return Complaint{}, err
	}

	return Complaint{
		ID: complaintID, StudentID: studentID, Category: category,
		Title: title, Description: desc, Status: ComplaintPending, CreatedAt: now,
	}, nil
}

const complaintCols = `c.id, c.student_id, c.category, c.title, c.description,
	c.status, c.admin_response, c.resolved_at, c.created_at`

func scanComplaint(row pgx.Row, c *Complaint) error {
	var category, status string
	err := row.Scan(&c.ID, &c.StudentID, &category, &c.Title, &c.Description,
		&status, &c.AdminResponse, &c.ResolvedAt, &c.CreatedAt)
	if err != nil {
		return err
	}
	c.Category, c.Status = ComplaintCategory(category), ComplaintStatus(status)
	return nil
}

// ListComplaints returns all complaints with filer identity, newest first.
func (s *PostgresStore) ListComplaints(ctx context.Context) ([]ComplaintDetail, error) {
	if s == nil || s.pool == nil {
		return nil, ErrInvalidInput
	}

	rows, err := s.pool.Query(ctx,
		`SELECT `+complaintCols+`, u.name, u.email
		   FROM `+s.table("complaints")+` c
		   JOIN `+s.table("students")+` st ON st.id = c.student_id
		   JOIN `+s.table("users")+` u ON u.id = st.user_id
		  ORDER BY c.created_at DESC, c.id DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ComplaintDetail, 0, 32)
	for rows.Next() {
		var (
			d              ComplaintDetail
			category, stat string
		)
		if err := rows.Scan(&d.ID, &d.StudentID, &category, &d.Title, &d.Description,
			&stat, &d.AdminResponse, &d.ResolvedAt, &d.CreatedAt,
			&d.StudentName, &d.StudentEmail); err != nil {
			return nil, err
		}
		d.Category, d.Status = ComplaintCategory(category), ComplaintStatus(stat)
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListComplaintsByStudent returns one student's complaints, newest first.
func (s *PostgresStore) ListComplaintsByStudent(ctx context.Context, studentID string) ([]Complaint, error) {
	if s == nil || s.pool == nil {
		return nil, ErrInvalidInput
	}
	studentID = strings.TrimSpace(studentID)
	if studentID == "" {
		return nil, ErrInvalidInput
	}

	rows, err := s.pool.Query(ctx,
		`SELECT `+complaintCols+`
		   FROM `+s.table("complaints")+` c
		  WHERE c.student_id = $1
		  ORDER BY c.created_at DESC, c.id DESC`,
		studentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Complaint, 0, 8)
	for rows.Next() {
		var c Complaint
		if err := scanComplaint(rows, &c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpdateComplaint moves a complaint to a new status. resolved_at is stamped
// on first resolution and never overwritten.
func (s *PostgresStore) UpdateComplaint(ctx context.Context, in UpdateComplaintInput) (Complaint, error) {
	if s == nil || s.pool == nil {
		return Complaint{}, ErrInvalidInput
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

	var resolvedAt *time.Time
	if in.Status == ComplaintResolved {
		resolvedAt = &now
	}

	var out Complaint
	err := scanComplaint(s.pool.QueryRow(ctx,
		`UPDATE `+s.table("complaints")+` c
		    SET status = $2,
		        admin_response = COALESCE($3, admin_response),
		        resolved_at = COALESCE(resolved_at, $4)
		  WHERE c.id = $1
		RETURNING `+complaintCols,
		id, string(in.Status), trimPtr(in.AdminResponse), resolvedAt,
	), &out)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Complaint{}, ErrNotFound
		}
		return Complaint{}, err
	}
	return out, nil
}

// CreateNotification inserts an announcement.
func (s *PostgresStore) CreateNotification(ctx context.Context, in CreateNotificationInput) (Notification, error) {
	if s == nil || s.pool == nil {
		return Notification{}, ErrInvalidInput
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
	notifID, err := newULID(now)
	if err != nil {
		return Notification{}, err
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO `+s.table("notifications")+` (
		     id, title, message, target, student_id, created_at
		   ) VALUES ($1, $2, $3, $4, $5, $6)`,
		notifID, title, message, string(in.Target), studentID, now,
	)
	if err != nil {
		return Notification{}, err
	}

	return Notification{
		ID: notifID, Title: title, Message: message,
		Target: in.Target, StudentID: studentID, CreatedAt: now,
	}, nil
}

// ListNotificationsForStudent returns broadcasts plus targeted rows.
func (s *PostgresStore) ListNotificationsForStudent(ctx context.Context, studentID string) ([]Notification, error) {
	if s == nil || s.pool == nil {
		return nil, ErrInvalidInput
	}
	studentID = strings.TrimSpace(studentID)
	if studentID == "" {
		return nil, ErrInvalidInput
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, title, message, target, student_id, created_at
		   FROM `+s.table("notifications")+`
		  WHERE target = 'all' OR (target = 'specific' AND student_id = $1)
		  ORDER BY created_at DESC, id DESC`,
		studentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Notification, 0, 16)
	for rows.Next() {
		var (
			n      Notification
			target string
		)
		if err := rows.Scan(&n.ID, &n.Title, &n.Message, &target, &n.StudentID, &n.CreatedAt); err != nil {
			return nil, err
		}
		n.Target = NotificationTarget(target)
		out = append(out, n)
	}
	return out, rows.Err()
}

// Stats computes the dashboard counters in one round trip.
func (s *PostgresStore) Stats(ctx context.Context, now time.Time) (Stats, error) {
	if s == nil || s.pool == nil {
		return Stats{}, ErrInvalidInput
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	var out Stats
	err := s.pool.QueryRow(ctx,
		`SELECT
		   (SELECT COUNT(*) FROM `+s.table("students")+` WHERE is_active),
		   (SELECT COUNT(*) FROM `+s.table("rooms")+`),
		   (SELECT COUNT(*) FROM `+s.table("attendance")+`
		     WHERE date = $1 AND status = 'present'),
		   (SELECT COUNT(*) FROM `+s.table("complaints")+` WHERE status = 'pending')`,
		DateOnly(now),
	).Scan(&out.TotalStudents, &out.TotalRooms, &out.PresentToday, &out.PendingComplaints)
	if err != nil {
		return Stats{}, err
	}
	return out, nil
}

func newULID(now time.Time) (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(now), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func trimPtr(v *string) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return nil
	}
	return &s
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
