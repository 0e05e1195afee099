package technician

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	techs map[string]*Technician
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{techs: map[string]*Technician{}}
}

func (f *fakeRepo) Create(ctx context.Context, t *Technician) error {
	f.techs[t.ID.String()] = t
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id string) (*Technician, error) {
	t, ok := f.techs[id]
	if !ok {
		return nil, fmt.Errorf("technician not found")
	}
	return t, nil
}

func (f *fakeRepo) List(ctx context.Context, status string) ([]*Technician, error) {
	var out []*Technician
	for _, t := range f.techs {
		if status == "" || string(t.Status) == status {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeRepo) UpdateStatus(ctx context.Context, id string, status TechnicianStatus) error {
	f.techs[id].Status = status
	return nil
}

func (f *fakeRepo) ReplaceSkills(ctx context.Context, id string, skills []Skill) error {
	f.techs[id].Skills = skills
	return nil
}

func TestCreateTechnician_NormalizesSkills(t *testing.T) {
	svc := NewService(newFakeRepo())

	tech, err := svc.CreateTechnician(context.Background(), CreateTechnicianRequest{
		Name:   "ana",
		Rating: 4.5,
		Skills: []Skill{
			{Name: "  AC Split  ", Proficiency: "Expert"},
			{Name: "Wiring"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, StatusAvailable, tech.Status)
	require.Len(t, tech.Skills, 2)
	assert.Equal(t, Skill{Name: "ac split", Proficiency: "expert"}, tech.Skills[0])
	// Missing proficiency falls back to basic.
	assert.Equal(t, Skill{Name: "wiring", Proficiency: "basic"}, tech.Skills[1])
}

func TestCreateTechnician_Validation(t *testing.T) {
	svc := NewService(newFakeRepo())

	_, err := svc.CreateTechnician(context.Background(), CreateTechnicianRequest{})
	require.Error(t, err)

	_, err = svc.CreateTechnician(context.Background(), CreateTechnicianRequest{Name: "ana", Rating: 6})
	require.Error(t, err)

	_, err = svc.CreateTechnician(context.Background(), CreateTechnicianRequest{
		Name:   "ana",
		Skills: []Skill{{Name: "ac split", Proficiency: "wizard"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid proficiency")
}

func TestUpdateStatus(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	tech, err := svc.CreateTechnician(context.Background(), CreateTechnicianRequest{Name: "budi"})
	require.NoError(t, err)

	got, err := svc.UpdateStatus(context.Background(), tech.ID.String(), UpdateStatusRequest{Status: "ON_JOB"})
	require.NoError(t, err)
	assert.Equal(t, StatusOnJob, got.Status)

	_, err = svc.UpdateStatus(context.Background(), tech.ID.String(), UpdateStatusRequest{Status: "vacation"})
	require.Error(t, err)
}

func TestListTechnicians_RejectsUnknownStatus(t *testing.T) {
	svc := NewService(newFakeRepo())

	_, err := svc.ListTechnicians(context.Background(), "sleeping")
	require.Error(t, err)
}
