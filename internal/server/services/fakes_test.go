package services

// In-memory repository fakes for the domain aggregates. They implement the
// repository interfaces closely enough for service-level tests: sequential
// ids, ErrNotFound for misses, ErrConflict for unique collisions.

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shepherdhq/memberd/internal/common"
	"github.com/shepherdhq/memberd/internal/server/models"
)

type fakeMemberRepo struct {
	mu   sync.Mutex
	seq  int
	rows map[string]*models.Member
}

func newFakeMemberRepo() *fakeMemberRepo {
	return &fakeMemberRepo{rows: map[string]*models.Member{}}
}

func (f *fakeMemberRepo) nextID() string {
	f.seq++
	return fmt.Sprintf("m%d", f.seq)
}

func (f *fakeMemberRepo) Create(ctx context.Context, m *models.Member) (*models.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m.Email != nil {
		for _, existing := range f.rows {
			if existing.Email != nil && *existing.Email == *m.Email {
				return nil, common.ErrConflict
			}
		}
	}
	m.ID = f.nextID()
	m.CreatedAt = time.Now()
	cp := *m
	f.rows[m.ID] = &cp
	return m, nil
}

func (f *fakeMemberRepo) FindByID(ctx context.Context, id string) (*models.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.rows[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (f *fakeMemberRepo) FindByEmail(ctx context.Context, email string) (*models.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.rows {
		if m.Email != nil && *m.Email == email {
			cp := *m
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeMemberRepo) List(ctx context.Context, filter models.MemberFilter) ([]models.Member, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []models.Member
	for _, m := range f.rows {
		if filter.Status != "" && m.Status != filter.Status {
			continue
		}
		if filter.ZoneID != "" && m.ZoneID != filter.ZoneID {
			continue
		}
		if filter.CellID != "" && m.CellID != filter.CellID {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(m.Name), strings.ToLower(filter.Search)) {
			continue
		}
		all = append(all, *m)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	total := len(all)
	if filter.Offset >= len(all) {
		return nil, total, nil
	}
	all = all[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(all) {
		all = all[:filter.Limit]
	}
	return all, total, nil
}

func (f *fakeMemberRepo) Update(ctx context.Context, m *models.Member) (*models.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[m.ID]; !ok {
		return nil, common.ErrNotFound
	}
	cp := *m
	f.rows[m.ID] = &cp
	out := *m
	return &out, nil
}

func (f *fakeMemberRepo) UpdateAttendance(ctx context.Context, id string, attendance int, lastVisit time.Time, status models.MemberStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.rows[id]
	if !ok {
		return common.ErrNotFound
	}
	m.SundayAttendance = attendance
	m.LastVisit = lastVisit
	m.Status = status
	return nil
}

func (f *fakeMemberRepo) SearchByContact(ctx context.Context, phone, email string) ([]models.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Member
	for _, m := range f.rows {
		if (phone != "" && m.Phone == phone) || (email != "" && m.Email != nil && *m.Email == email) {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeMemberRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return common.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

type fakeZoneRepo struct {
	mu   sync.Mutex
	seq  int
	rows map[string]*models.Zone
}

func newFakeZoneRepo() *fakeZoneRepo {
	return &fakeZoneRepo{rows: map[string]*models.Zone{}}
}

func (f *fakeZoneRepo) Create(ctx context.Context, z *models.Zone) (*models.Zone, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	z.ID = fmt.Sprintf("z%d", f.seq)
	z.CreatedAt = time.Now()
	cp := *z
	f.rows[z.ID] = &cp
	return z, nil
}

func (f *fakeZoneRepo) FindByID(ctx context.Context, id string) (*models.Zone, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	z, ok := f.rows[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *z
	return &cp, nil
}

func (f *fakeZoneRepo) List(ctx context.Context) ([]models.Zone, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Zone
	for _, z := range f.rows {
		out = append(out, *z)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeZoneRepo) Update(ctx context.Context, z *models.Zone) (*models.Zone, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[z.ID]; !ok {
		return nil, common.ErrNotFound
	}
	cp := *z
	f.rows[z.ID] = &cp
	out := *z
	return &out, nil
}

func (f *fakeZoneRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return common.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

type fakeCellRepo struct {
	mu   sync.Mutex
	seq  int
	rows map[string]*models.Cell
}

func newFakeCellRepo() *fakeCellRepo {
	return &fakeCellRepo{rows: map[string]*models.Cell{}}
}

func (f *fakeCellRepo) Create(ctx context.Context, c *models.Cell) (*models.Cell, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	c.ID = fmt.Sprintf("c%d", f.seq)
	c.CreatedAt = time.Now()
	cp := *c
	f.rows[c.ID] = &cp
	return c, nil
}

func (f *fakeCellRepo) FindByID(ctx context.Context, id string) (*models.Cell, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.rows[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCellRepo) List(ctx context.Context) ([]models.Cell, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Cell
	for _, c := range f.rows {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeCellRepo) ListByZone(ctx context.Context, zoneID string) ([]models.Cell, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Cell
	for _, c := range f.rows {
		if c.ZoneID == zoneID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeCellRepo) Update(ctx context.Context, c *models.Cell) (*models.Cell, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[c.ID]; !ok {
		return nil, common.ErrNotFound
	}
	cp := *c
	f.rows[c.ID] = &cp
	out := *c
	return &out, nil
}

func (f *fakeCellRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return common.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

type fakeDepartmentRepo struct {
	mu      sync.Mutex
	seq     int
	rows    map[string]*models.Department
	links   map[string]map[string]bool // memberID -> departmentID set
}

func newFakeDepartmentRepo() *fakeDepartmentRepo {
	return &fakeDepartmentRepo{
		rows:  map[string]*models.Department{},
		links: map[string]map[string]bool{},
	}
}

func (f *fakeDepartmentRepo) Create(ctx context.Context, d *models.Department) (*models.Department, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.rows {
		if existing.Name == d.Name {
			return nil, common.ErrConflict
		}
	}
	f.seq++
	d.ID = fmt.Sprintf("d%d", f.seq)
	d.CreatedAt = time.Now()
	cp := *d
	f.rows[d.ID] = &cp
	return d, nil
}

func (f *fakeDepartmentRepo) FindByID(ctx context.Context, id string) (*models.Department, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.rows[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (f *fakeDepartmentRepo) List(ctx context.Context) ([]models.Department, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Department
	for _, d := range f.rows {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeDepartmentRepo) Update(ctx context.Context, d *models.Department) (*models.Department, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[d.ID]; !ok {
		return nil, common.ErrNotFound
	}
	for id, existing := range f.rows {
		if id != d.ID && existing.Name == d.Name {
			return nil, common.ErrConflict
		}
	}
	cp := *d
	f.rows[d.ID] = &cp
	out := *d
	return &out, nil
}

func (f *fakeDepartmentRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return common.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeDepartmentRepo) AssignMember(ctx context.Context, departmentID, memberID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.links[memberID] == nil {
		f.links[memberID] = map[string]bool{}
	}
	f.links[memberID][departmentID] = true
	return nil
}

func (f *fakeDepartmentRepo) UnassignMember(ctx context.Context, departmentID, memberID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.links[memberID][departmentID] {
		return common.ErrNotFound
	}
	delete(f.links[memberID], departmentID)
	return nil
}

func (f *fakeDepartmentRepo) ListForMember(ctx context.Context, memberID string) ([]models.Department, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Department
	for id := range f.links[memberID] {
		if d, ok := f.rows[id]; ok {
			out = append(out, *d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeFollowUpRepo struct {
	mu   sync.Mutex
	seq  int
	rows map[string]*models.FollowUp
}

func newFakeFollowUpRepo() *fakeFollowUpRepo {
	return &fakeFollowUpRepo{rows: map[string]*models.FollowUp{}}
}

func (f *fakeFollowUpRepo) Create(ctx context.Context, fu *models.FollowUp) (*models.FollowUp, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	fu.ID = fmt.Sprintf("f%d", f.seq)
	fu.CreatedAt = time.Now()
	cp := *fu
	f.rows[fu.ID] = &cp
	return fu, nil
}

func (f *fakeFollowUpRepo) FindByID(ctx context.Context, id string) (*models.FollowUp, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fu, ok := f.rows[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *fu
	return &cp, nil
}

func (f *fakeFollowUpRepo) ListForMember(ctx context.Context, memberID string) ([]models.FollowUp, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.FollowUp
	for _, fu := range f.rows {
		if fu.MemberID == memberID {
			out = append(out, *fu)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeFollowUpRepo) ListAssignedTo(ctx context.Context, userID string) ([]models.FollowUp, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.FollowUp
	for _, fu := range f.rows {
		if fu.AssignedTo == userID {
			out = append(out, *fu)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeFollowUpRepo) Update(ctx context.Context, fu *models.FollowUp) (*models.FollowUp, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.rows[fu.ID]
	if !ok {
		return nil, common.ErrNotFound
	}
	existing.AssignedTo = fu.AssignedTo
	existing.Notes = fu.Notes
	existing.Status = fu.Status
	existing.DueDate = fu.DueDate
	cp := *existing
	return &cp, nil
}

func (f *fakeFollowUpRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return common.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

// newDomainManager builds a fakeRepoManager with every repository populated.
func newDomainManager() *fakeRepoManager {
	return &fakeRepoManager{
		tokens:      newFakeTokenRepo(),
		users:       newFakeUserRepo(),
		members:     newFakeMemberRepo(),
		zones:       newFakeZoneRepo(),
		cells:       newFakeCellRepo(),
		departments: newFakeDepartmentRepo(),
		followUps:   newFakeFollowUpRepo(),
	}
}
