package models

import "testing"

func TestCreateCustomerHashesPassword(t *testing.T) {
	c, err := CreateCustomer("Jane Doe", "jane@example.com", "s3cretpw")
	if err != nil {
		t.Fatalf("CreateCustomer: %v", err)
	}
	if c.Password == "s3cretpw" {
		t.Fatal("password stored in plaintext")
	}
	if !c.CheckPassword("s3cretpw") {
		t.Fatal("CheckPassword rejected the original password")
	}
	if c.CheckPassword("wrongpw") {
		t.Fatal("CheckPassword accepted a wrong password")
	}
}

func TestCreateCustomerValidates(t *testing.T) {
	if _, err := CreateCustomer("J", "not-an-email", "s3cretpw"); err == nil {
		t.Fatal("expected validation error for bad name/email")
	}
}
