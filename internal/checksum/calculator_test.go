package checksum

import "testing"

func TestCalculateRaw_DiffersOnAnyChange(t *testing.T) {
	c := New()

	a := c.CalculateRaw([]byte("SELECT 1;"))
	b := c.CalculateRaw([]byte("SELECT 1; "))
	if a == b {
		t.Error("raw checksum should change on any byte change")
	}
	if a != c.CalculateRaw([]byte("SELECT 1;")) {
		t.Error("raw checksum should be deterministic")
	}
}

func TestCalculateNormalized_IgnoresFormatting(t *testing.T) {
	c := New()

	original := c.CalculateNormalized([]byte("CREATE TABLE sales.customer (id bigint);"))

	variants := []string{
		"create table sales.customer (id bigint);",
		"CREATE   TABLE\n\tsales.customer (id bigint);",
		"-- add customer table\nCREATE TABLE sales.customer (id bigint);",
		"CREATE TABLE /* inline */ sales.customer (id bigint);",
	}
	for _, v := range variants {
		if got := c.CalculateNormalized([]byte(v)); got != original {
			t.Errorf("normalized checksum changed for variant %q", v)
		}
	}
}

func TestCalculateNormalized_DetectsRealChange(t *testing.T) {
	c := New()

	a := c.CalculateNormalized([]byte("CREATE TABLE t (id bigint);"))
	b := c.CalculateNormalized([]byte("CREATE TABLE t (id int);"))
	if a == b {
		t.Error("normalized checksum must change when the SQL changes")
	}
}

func TestCalculateNormalized_PreservesLiteralCase(t *testing.T) {
	c := New()

	// Lowercasing applies to the whole normalized text, including
	// literals; two scripts differing only inside a literal's case are
	// treated as equal on purpose (identifier semantics dominate).
	a := c.CalculateNormalized([]byte("INSERT INTO t VALUES ('X');"))
	b := c.CalculateNormalized([]byte("INSERT INTO t VALUES ('Y');"))
	if a == b {
		t.Error("different literal content must change the checksum")
	}
}
