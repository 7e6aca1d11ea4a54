package inmemdb

import (
	"context"
	"testing"

	"github.com/vipinkoroth/sarvodaya/core/student"
)

func Test_studentRepository_CheckAdmissionNoUniqueness(t *testing.T) {
	db, err := Open()
	if err != nil {
		t.Fatalf("Open() failed, %v", err)
	}
	repo := NewStudentRepository(db)

	ctx := context.Background()
	anu, err := repo.CreateStudent(ctx, student.Student{ID: "1", AdmissionNo: "A100", Name: "Anu", Class: "5", Division: "A"})
	if err != nil {
		t.Fatalf("CreateStudent() failed, %v", err)
	}

	tests := []struct {
		name        string
		admissionNo string
		excluded    []student.Student
		wantErr     error
	}{
		{name: "available", admissionNo: "A200"},
		{name: "taken", admissionNo: "A100", wantErr: student.ErrAdmissionExists},
		{name: "taken by excluded student", admissionNo: "A100", excluded: []student.Student{anu}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := repo.CheckAdmissionNoUniqueness(ctx, tt.admissionNo, tt.excluded); err != tt.wantErr {
				t.Errorf("CheckAdmissionNoUniqueness() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
