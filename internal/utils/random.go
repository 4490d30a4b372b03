package utils

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/mozillazg/go-pinyin"
	"golang.org/x/crypto/bcrypt"

	"github.com/pawsitive-dev/shelter-manager/backend/internal/domain"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "勇", "霞", "飞", "玲",
	"超", "华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌",
	"庆", "建", "丹", "彬", "凤", "旭", "宁", "乐", "成", "欣",
}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

var roles = []domain.Role{
	domain.RoleVolunteer,
	domain.RoleCaretaker,
	domain.RoleVeterinarian,
}

func GenerateRandomRole() domain.Role {
	return roles[rand.Intn(len(roles))]
}

var digits = "0123456789"

func GenerateUsernameFromChineseName(chineseName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	username := ""

	for _, pinyin := range pinyinArray {
		length := rand.Intn(len(pinyin)) + 1
		username += pinyin[:length]
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

func GenerateRandomUser(password string, emailDomainName string) (*domain.User, error) {
	fullName := GenerateRandomChineseName()
	username := GenerateUsernameFromChineseName(fullName)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: string(passwordHash),
		FullName:     fullName,
		Email:        username + "@" + emailDomainName,
		Role:         GenerateRandomRole(),
	}

	return user, nil
}

func GenerateRandomOTP() string {
	return fmt.Sprintf("%06d", rand.Intn(1000000))
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) string {
	random_password := make([]rune, length)
	for i := range random_password {
		random_password[i] = letters[rand.Intn(len(letters))]
	}
	return string(random_password)
}

var animalNames = []string{
	"Rex", "Milo", "Bella", "Luna", "Charlie", "Daisy", "Rocky", "Coco",
	"Buddy", "Molly", "Simba", "Nala", "Oscar", "Ruby", "Toby", "Pepper",
}

var dogBreeds = []string{
	"Labrador Retriever", "German Shepherd", "Beagle", "Poodle Mix",
	"Border Collie", "Mixed Breed",
}

var catBreeds = []string{
	"Domestic Shorthair", "Maine Coon", "Siamese", "Tabby", "Mixed Breed",
}

var sexes = []string{"male", "female", "unknown"}

func GenerateRandomAnimal() *domain.Animal {
	species := "dog"
	breeds := dogBreeds
	if rand.Intn(2) == 0 {
		species = "cat"
		breeds = catBreeds
	}

	now := time.Now()

	return &domain.Animal{
		Name:        animalNames[rand.Intn(len(animalNames))],
		Species:     species,
		Breed:       breeds[rand.Intn(len(breeds))],
		Sex:         sexes[rand.Intn(len(sexes))],
		BirthDate:   now.AddDate(-rand.Intn(10)-1, 0, -rand.Intn(365)),
		IntakeDate:  now.AddDate(0, 0, -rand.Intn(180)-1),
		Description: "Friendly and looking for walk buddies.",
	}
}

// GenerateRandomUpcomingReservation books a random one or two hour walk on
// a random day in the next week, aligned to whole hours inside the given
// business hours.
func GenerateRandomUpcomingReservation(animalID int64, userID int64, openingHour int, closingHour int) *domain.Reservation {
	day := time.Now().AddDate(0, 0, rand.Intn(7)+1)
	duration := rand.Intn(2) + 1
	startHour := openingHour + rand.Intn(closingHour-openingHour-duration+1)

	start := time.Date(day.Year(), day.Month(), day.Day(), startHour, 0, 0, 0, time.Local)

	return &domain.Reservation{
		AnimalID:  animalID,
		UserID:    userID,
		StartTime: start,
		EndTime:   start.Add(time.Duration(duration) * time.Hour),
		Status:    domain.StatusUpcoming,
	}
}
