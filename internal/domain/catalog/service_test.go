package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/medilab/lims/pkg/apperror"
)

// -- Mock Repository --

type mockTestRepo struct {
	store map[uuid.UUID]*Test
}

func newMockTestRepo() *mockTestRepo {
	return &mockTestRepo{store: make(map[uuid.UUID]*Test)}
}

func (m *mockTestRepo) Create(_ context.Context, t *Test) error {
	for _, existing := range m.store {
		if existing.Name == t.Name {
			return apperror.Conflict("test %q already exists", t.Name)
		}
	}
	t.ID = uuid.New()
	m.store[t.ID] = t
	return nil
}

func (m *mockTestRepo) GetByID(_ context.Context, id uuid.UUID) (*Test, error) {
	t, ok := m.store[id]
	if !ok {
		return nil, apperror.NotFound("test %s not found", id)
	}
	return t, nil
}

func (m *mockTestRepo) GetByIDs(_ context.Context, ids []uuid.UUID) ([]*Test, error) {
	var r []*Test
	for _, id := range ids {
		if t, ok := m.store[id]; ok {
			r = append(r, t)
		}
	}
	return r, nil
}

func (m *mockTestRepo) Update(_ context.Context, t *Test) error {
	if _, ok := m.store[t.ID]; !ok {
		return apperror.NotFound("test %s not found", t.ID)
	}
	m.store[t.ID] = t
	return nil
}

func (m *mockTestRepo) List(_ context.Context, activeOnly bool, limit, offset int) ([]*Test, int, error) {
	var r []*Test
	for _, t := range m.store {
		if activeOnly && !t.Active {
			continue
		}
		r = append(r, t)
	}
	return r, len(r), nil
}

func validTest() *Test {
	return &Test{
		Name:      "Complete Blood Count",
		AdminRole: "hematology",
		Active:    true,
		Fields: []TestFieldSchema{
			{FieldName: "result_value", FieldType: FieldNumber, Required: true},
			{FieldName: "status", FieldType: FieldSelect, Required: true, Options: []string{"positive", "negative", "inconclusive"}},
		},
	}
}

// -- Service Tests --

func TestCreateTest_Success(t *testing.T) {
	svc := NewService(newMockTestRepo())
	test := validTest()
	if err := svc.CreateTest(context.Background(), test); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if test.ID == uuid.Nil {
		t.Error("expected ID to be set")
	}
}

func TestCreateTest_MissingName(t *testing.T) {
	svc := NewService(newMockTestRepo())
	test := validTest()
	test.Name = ""
	if err := svc.CreateTest(context.Background(), test); err == nil {
		t.Fatal("expected error for missing name")
	}
}

func TestCreateTest_MissingAdminRole(t *testing.T) {
	svc := NewService(newMockTestRepo())
	test := validTest()
	test.AdminRole = ""
	if err := svc.CreateTest(context.Background(), test); err == nil {
		t.Fatal("expected error for missing admin_role")
	}
}

func TestCreateTest_NoFields(t *testing.T) {
	svc := NewService(newMockTestRepo())
	test := validTest()
	test.Fields = nil
	if err := svc.CreateTest(context.Background(), test); err == nil {
		t.Fatal("expected error for empty field schema")
	}
}

func TestCreateTest_InvalidSchema(t *testing.T) {
	svc := NewService(newMockTestRepo())
	test := validTest()
	test.Fields = append(test.Fields, TestFieldSchema{FieldName: "grade", FieldType: FieldSelect})
	err := svc.CreateTest(context.Background(), test)
	if err == nil {
		t.Fatal("expected error for select without options")
	}
	if apperror.KindOf(err) != apperror.KindBadRequest {
		t.Errorf("expected BadRequest, got %v", apperror.KindOf(err))
	}
}

func TestCreateTest_DuplicateName(t *testing.T) {
	repo := newMockTestRepo()
	svc := NewService(repo)
	if err := svc.CreateTest(context.Background(), validTest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := svc.CreateTest(context.Background(), validTest())
	if apperror.KindOf(err) != apperror.KindConflict {
		t.Errorf("expected Conflict for duplicate name, got %v", err)
	}
}

func TestCreateTest_InvertedTestLevelRange(t *testing.T) {
	svc := NewService(newMockTestRepo())
	test := validTest()
	test.NormalRangeMin = f64(20)
	test.NormalRangeMax = f64(10)
	if err := svc.CreateTest(context.Background(), test); err == nil {
		t.Fatal("expected error for inverted test-level range")
	}
}

func TestUpdateTest_NotFound(t *testing.T) {
	svc := NewService(newMockTestRepo())
	test := validTest()
	test.ID = uuid.New()
	err := svc.UpdateTest(context.Background(), test)
	if apperror.KindOf(err) != apperror.KindNotFound {
		t.Errorf("expected NotFound, got %v", err)
	}
}

func TestListTests_ActiveOnly(t *testing.T) {
	repo := newMockTestRepo()
	svc := NewService(repo)
	active := validTest()
	svc.CreateTest(context.Background(), active)
	inactive := validTest()
	inactive.Name = "Retired Panel"
	inactive.Active = false
	svc.CreateTest(context.Background(), inactive)

	items, total, err := svc.ListTests(context.Background(), true, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Errorf("expected 1 active test, got %d", total)
	}
}
