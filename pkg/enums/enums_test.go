package enums

import "testing"

func TestParseOrderStatus(t *testing.T) {
	status, err := ParseOrderStatus("SHIPPED")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if status != OrderStatusShipped {
		t.Fatalf("unexpected status %s", status)
	}

	if _, err := ParseOrderStatus("shipped"); err == nil {
		t.Fatal("expected case-sensitive rejection")
	}
	if OrderStatus("REFUNDED").IsValid() {
		t.Fatal("unknown status must not validate")
	}
}

func TestParsePaymentMethodDefaults(t *testing.T) {
	method, err := ParsePaymentMethod("COD")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if method != PaymentMethodCOD {
		t.Fatalf("unexpected method %s", method)
	}
}

func TestUserRoleValidation(t *testing.T) {
	if !UserRoleShopkeeper.IsValid() {
		t.Fatal("shopkeeper must be valid")
	}
	if UserRole("admin").IsValid() {
		t.Fatal("admin is not a marketplace role")
	}
}

func TestCartOwnerKind(t *testing.T) {
	kind, err := ParseCartOwnerKind("guest")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if kind != CartOwnerGuest {
		t.Fatalf("unexpected kind %s", kind)
	}
}
