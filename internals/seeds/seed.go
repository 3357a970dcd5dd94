package seeds

import (
	"context"
	"errors"
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"district_platform/internals/allocator"
	"district_platform/internals/configs"
	"district_platform/internals/constants"
	userModel "district_platform/internals/features/users/user/model"
)

type districtSeed struct {
	Username     string
	DistrictName string
}

// Default district accounts created on first boot. Names are bilingual so
// both the English and Marathi UI render them as-is.
var defaultDistricts = []districtSeed{
	{"amravati_rural", "Amravati Rural / अमरावती ग्रामीण"},
	{"amravati_city", "Amravati City / अमरावती शहर"},
	{"buldhana", "Buldhana / बुलढाणा"},
	{"washim", "Washim / वाशिम"},
	{"yavatmal", "Yavatmal / यवतमाळ"},
	{"akola", "Akola / अकोला"},
}

// Run seeds the admin account and the default district users. Seeding is
// idempotent and skips quietly when the credentials are not configured.
func Run(db *gorm.DB) error {
	alloc := allocator.New(db)

	if configs.AdminUsername == "" || configs.AdminPassword == "" {
		log.Println("[SEED] ADMIN_USERNAME/ADMIN_PASSWORD not set, skipping admin seed")
	} else {
		created, err := ensureUser(db, alloc, configs.AdminUsername, configs.AdminPassword, constants.RoleAdmin, nil)
		if err != nil {
			return err
		}
		if created {
			log.Printf("[SEED] created admin user %q", configs.AdminUsername)
		}
	}

	if configs.DistrictDefaultPassword == "" {
		log.Println("[SEED] DISTRICT_DEFAULT_PASSWORD not set, skipping district seed")
		return nil
	}
	for _, d := range defaultDistricts {
		name := d.DistrictName
		created, err := ensureUser(db, alloc, d.Username, configs.DistrictDefaultPassword, constants.RoleDistrict, &name)
		if err != nil {
			return err
		}
		if created {
			log.Printf("[SEED] created district user %q", d.Username)
		}
	}
	return nil
}

func ensureUser(db *gorm.DB, alloc *allocator.Allocator, username, password, role string, districtName *string) (bool, error) {
	var existing userModel.UserModel
	err := db.Where("username = ?", username).First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}
	id, err := alloc.Next(context.Background(), allocator.EntityUsers)
	if err != nil {
		return false, err
	}
	user := userModel.UserModel{
		ID:           id,
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		DistrictName: districtName,
	}
	if err := db.Create(&user).Error; err != nil {
		return false, err
	}
	return true, nil
}
