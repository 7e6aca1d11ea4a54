// Package testutil provides data factories shared by integration-style tests.
// They work against the repository ports, so any store implementation can
// back them; tests default to the in-memory one to stay self-contained.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/vipinkoroth/sarvodaya/core/collection"
	"github.com/vipinkoroth/sarvodaya/core/payment"
	"github.com/vipinkoroth/sarvodaya/core/student"
	"github.com/vipinkoroth/sarvodaya/core/user"
)

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	usr.SetActive(isActive)
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser(): %v", err)
		}
	}

	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser(): %v", err)
	}
	return usr
}

func CreateStudent(
	t *testing.T,
	repo student.Repository,
	admissionNo, name, class, division, busStop string,
	busFeeDiscount int,
) student.Student {
	t.Helper()

	now := time.Now().UTC()
	st := student.Student{
		AdmissionNo:    admissionNo,
		Name:           name,
		Class:          class,
		Division:       division,
		BusStop:        busStop,
		BusFeeDiscount: busFeeDiscount,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	st, err := repo.CreateStudent(context.Background(), st)
	if err != nil {
		t.Fatalf("CreateStudent(): %v", err)
	}
	return st
}

func CreatePayment(
	t *testing.T,
	repo payment.Repository,
	st student.Student,
	devFee, busFee, specialFee int,
	specialFeeType, addedBy string,
	paymentDate ...time.Time,
) payment.Payment {
	t.Helper()

	date := time.Now().UTC()
	if len(paymentDate) > 0 {
		date = paymentDate[0].UTC()
	}
	p := payment.Payment{
		StudentID:      st.ID,
		StudentName:    st.Name,
		AdmissionNo:    st.AdmissionNo,
		Class:          st.Class,
		Division:       st.Division,
		DevelopmentFee: devFee,
		BusFee:         busFee,
		SpecialFee:     specialFee,
		SpecialFeeType: specialFeeType,
		TotalAmount:    devFee + busFee + specialFee,
		PaymentDate:    date,
		AddedBy:        addedBy,
		UpdatedAt:      date,
	}

	p, err := repo.CreatePayment(context.Background(), p)
	if err != nil {
		t.Fatalf("CreatePayment(): %v", err)
	}
	return p
}

func CreateTeacherEntry(
	t *testing.T,
	repo collection.Repository,
	fromTeacher string,
	sec collection.Section,
	sectionHead string,
	cat collection.Category,
	amount int,
	recordedBy string,
	date ...time.Time,
) collection.TeacherEntry {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(date) > 0 {
		tstamp = date[0].UTC()
	}
	entry := collection.TeacherEntry{
		FromTeacher: fromTeacher,
		Section:     sec,
		SectionHead: sectionHead,
		Category:    cat,
		Amount:      amount,
		Date:        tstamp,
		RecordedBy:  recordedBy,
		UpdatedAt:   tstamp,
	}

	entry, err := repo.CreateTeacherEntry(context.Background(), entry)
	if err != nil {
		t.Fatalf("CreateTeacherEntry(): %v", err)
	}
	return entry
}

func CreateSectionEntry(
	t *testing.T,
	repo collection.Repository,
	sec collection.Section,
	cat collection.Category,
	amount int,
	recordedBy string,
	date ...time.Time,
) collection.SectionEntry {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(date) > 0 {
		tstamp = date[0].UTC()
	}
	entry := collection.SectionEntry{
		FromSection: sec,
		Category:    cat,
		Amount:      amount,
		Date:        tstamp,
		RecordedBy:  recordedBy,
		UpdatedAt:   tstamp,
	}

	entry, err := repo.CreateSectionEntry(context.Background(), entry)
	if err != nil {
		t.Fatalf("CreateSectionEntry(): %v", err)
	}
	return entry
}
