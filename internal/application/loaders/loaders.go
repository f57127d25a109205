package loaders

import (
	"context"

	"github.com/graph-gophers/dataloader/v7"

	"github.com/kllinic/marketplace/internal/domain/entities"
	"github.com/kllinic/marketplace/internal/domain/repositories"
)

// Loaders contains the batched by-id loaders used to attach display
// fields across tables. Loads for the same table within a batch window
// collapse into one query; a missing id resolves to nil data rather
// than an error, so callers can substitute a sentinel.
type Loaders struct {
	ProfileLoader   *dataloader.Loader[string, *entities.Profile]
	ClinicLoader    *dataloader.Loader[string, *entities.Clinic]
	PharmacyLoader  *dataloader.Loader[string, *entities.Pharmacy]
	DoctorLoader    *dataloader.Loader[string, *entities.Doctor]
	SpecialtyLoader *dataloader.Loader[string, *entities.Specialty]
}

// NewLoaders creates a new instance of Loaders
func NewLoaders(
	profileRepo repositories.ProfileRepository,
	clinicRepo repositories.ClinicRepository,
	pharmacyRepo repositories.PharmacyRepository,
	doctorRepo repositories.DoctorRepository,
	specialtyRepo repositories.SpecialtyRepository,
) *Loaders {
	return &Loaders{
		ProfileLoader: dataloader.NewBatchedLoader(func(ctx context.Context, keys []string) []*dataloader.Result[*entities.Profile] {
			results := make([]*dataloader.Result[*entities.Profile], len(keys))
			profiles, err := profileRepo.GetByIDs(ctx, keys)

			profileMap := make(map[string]*entities.Profile)
			if err == nil {
				for _, p := range profiles {
					profileMap[p.ID] = p
				}
			}

			for i, key := range keys {
				if err != nil {
					results[i] = &dataloader.Result[*entities.Profile]{Error: err}
				} else {
					results[i] = &dataloader.Result[*entities.Profile]{Data: profileMap[key]}
				}
			}
			return results
		}, dataloader.WithClearCacheOnBatch[string, *entities.Profile]()),
		ClinicLoader: dataloader.NewBatchedLoader(func(ctx context.Context, keys []string) []*dataloader.Result[*entities.Clinic] {
			results := make([]*dataloader.Result[*entities.Clinic], len(keys))
			clinics, err := clinicRepo.GetByIDs(ctx, keys)

			clinicMap := make(map[string]*entities.Clinic)
			if err == nil {
				for _, c := range clinics {
					clinicMap[c.ID] = c
				}
			}

			for i, key := range keys {
				if err != nil {
					results[i] = &dataloader.Result[*entities.Clinic]{Error: err}
				} else {
					results[i] = &dataloader.Result[*entities.Clinic]{Data: clinicMap[key]}
				}
			}
			return results
		}, dataloader.WithClearCacheOnBatch[string, *entities.Clinic]()),
		PharmacyLoader: dataloader.NewBatchedLoader(func(ctx context.Context, keys []string) []*dataloader.Result[*entities.Pharmacy] {
			results := make([]*dataloader.Result[*entities.Pharmacy], len(keys))
			pharmacies, err := pharmacyRepo.GetByIDs(ctx, keys)

			pharmacyMap := make(map[string]*entities.Pharmacy)
			if err == nil {
				for _, p := range pharmacies {
					pharmacyMap[p.ID] = p
				}
			}

			for i, key := range keys {
				if err != nil {
					results[i] = &dataloader.Result[*entities.Pharmacy]{Error: err}
				} else {
					results[i] = &dataloader.Result[*entities.Pharmacy]{Data: pharmacyMap[key]}
				}
			}
			return results
		}, dataloader.WithClearCacheOnBatch[string, *entities.Pharmacy]()),
		DoctorLoader: dataloader.NewBatchedLoader(func(ctx context.Context, keys []string) []*dataloader.Result[*entities.Doctor] {
			results := make([]*dataloader.Result[*entities.Doctor], len(keys))
			doctors, err := doctorRepo.GetByIDs(ctx, keys)

			doctorMap := make(map[string]*entities.Doctor)
			if err == nil {
				for _, d := range doctors {
					doctorMap[d.ID] = d
				}
			}

			for i, key := range keys {
				if err != nil {
					results[i] = &dataloader.Result[*entities.Doctor]{Error: err}
				} else {
					results[i] = &dataloader.Result[*entities.Doctor]{Data: doctorMap[key]}
				}
			}
			return results
		}, dataloader.WithClearCacheOnBatch[string, *entities.Doctor]()),
		SpecialtyLoader: dataloader.NewBatchedLoader(func(ctx context.Context, keys []string) []*dataloader.Result[*entities.Specialty] {
			results := make([]*dataloader.Result[*entities.Specialty], len(keys))
			specialties, err := specialtyRepo.GetByIDs(ctx, keys)

			specialtyMap := make(map[string]*entities.Specialty)
			if err == nil {
				for _, s := range specialties {
					specialtyMap[s.ID] = s
				}
			}

			for i, key := range keys {
				if err != nil {
					results[i] = &dataloader.Result[*entities.Specialty]{Error: err}
				} else {
					results[i] = &dataloader.Result[*entities.Specialty]{Data: specialtyMap[key]}
				}
			}
			return results
		}, dataloader.WithClearCacheOnBatch[string, *entities.Specialty]()),
	}
}
