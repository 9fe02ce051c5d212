package utils

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/mozillazg/go-pinyin"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
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

// GenerateEmployeeCode 用姓名拼音首字母加序号生成工号，例如 "王小明" 的第 7 个员工为 "WXM007"
func GenerateEmployeeCode(chineseName string, seq int) string {
	args := pinyin.NewArgs()
	args.Style = pinyin.FirstLetter
	initials := pinyin.LazyPinyin(chineseName, args)
	return fmt.Sprintf("%s%03d", strings.ToUpper(strings.Join(initials, "")), seq)
}

func GenerateRandomPlanner(password string, emailDomainName string) (*domain.User, error) {
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
		Role:         domain.RolePlanner,
	}

	return user, nil
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")

func GenerateRandomID(letterLength int, digitLength int) string {
	random_id := make([]rune, letterLength+digitLength)
	for i := range random_id {
		if i < letterLength {
			random_id[i] = letters[rand.Intn(len(letters))]
		} else {
			random_id[i] = rune(digits[rand.Intn(len(digits))])
		}
	}
	return string(random_id)
}

var districts = []string{"天河", "海珠", "越秀", "番禺", "白云", "黄埔"}

func GenerateRandomLocation(emailDomainName string) *domain.Location {
	district := districts[rand.Intn(len(districts))]
	id := GenerateRandomID(0, 4)

	return &domain.Location{
		Name:         fmt.Sprintf("%s店%s", district, id),
		Address:      fmt.Sprintf("广州市%s区%d号", district, rand.Intn(500)+1),
		ManagerEmail: fmt.Sprintf("store%s@%s", id, emailDomainName),
	}
}

var positions = []string{"店员", "收银", "仓管", "值班经理"}

func GenerateRandomEmployee(locationID int64, seq int, emailDomainName string) *domain.Employee {
	fullName := GenerateRandomChineseName()
	code := GenerateEmployeeCode(fullName, seq)

	return &domain.Employee{
		LocationID: locationID,
		FullName:   fullName,
		Code:       code,
		Email:      strings.ToLower(code) + "@" + emailDomainName,
		Position:   positions[rand.Intn(len(positions))],
	}
}

var commonTimeRanges = []string{
	"8:00-16:00", "9:00-17:00", "10:00-18:00", "14:00-22:00",
	"6:00-14:00", "7:30-15:30", "12:00-20:00",
	"8:00-21:00", // 超过 12 小时，用于演示合规告警
}

func GenerateRandomTimeRange() string {
	return commonTimeRanges[rand.Intn(len(commonTimeRanges))]
}

// GenerateRandomMonthShifts 为每个员工在 month 中的每一天以 workProbability 的概率生成一个班次
func GenerateRandomMonthShifts(employees []*domain.Employee, month time.Time, workProbability float64) []*domain.Shift {
	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	days := first.AddDate(0, 1, -1).Day()

	shifts := make([]*domain.Shift, 0)
	for _, employee := range employees {
		for day := 0; day < days; day++ {
			if rand.Float64() >= workProbability {
				continue
			}
			shifts = append(shifts, &domain.Shift{
				EmployeeID: employee.ID,
				LocationID: employee.LocationID,
				Date:       first.AddDate(0, 0, day).Format(time.DateOnly),
				TimeRange:  GenerateRandomTimeRange(),
			})
		}
	}

	return shifts
}
