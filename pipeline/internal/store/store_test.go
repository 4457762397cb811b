package store

import (
	"context"
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/hazyhaar/revgraph/dbopen"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	db := dbopen.OpenMemory(t, dbopen.WithSchema(Schema))
	return &Store{DB: db}
}

func insertFixture(t *testing.T, s *Store, id string) {
	t.Helper()
	err := s.InsertBuild(context.Background(),
		&Build{ID: id, Root: "/site", Documents: 2, Assets: 2, Edges: 3, StartedAt: 1, FinishedAt: 2},
		[]Asset{
			{Path: "/site/a.png", HashedPath: "/site/a.cafe1234.png"},
			{Path: "/site/main.css", HashedPath: "/site/main.beef5678.css"},
		},
		[]Edge{
			{FromPath: "/site/index.html", ToPath: "/site/a.png"},
			{FromPath: "/site/index.html", ToPath: "/site/main.css"},
			{FromPath: "/site/about.html", ToPath: "/site/main.css"},
		},
	)
	if err != nil {
		t.Fatalf("InsertBuild: %v", err)
	}
}

func TestInsertAndLatestBuild(t *testing.T) {
	// WHAT: A build round-trips and LatestBuild picks the newest ID.
	// WHY: Stats and the serve API read only the latest build.
	s := openTest(t)
	insertFixture(t, s, "bld_001")
	insertFixture2 := func(id string) {
		if err := s.InsertBuild(context.Background(),
			&Build{ID: id, Root: "/site", StartedAt: 3, FinishedAt: 4}, nil, nil); err != nil {
			t.Fatal(err)
		}
	}
	insertFixture2("bld_002")

	b, err := s.LatestBuild(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if b == nil || b.ID != "bld_002" {
		t.Errorf("latest = %+v", b)
	}
}

func TestLatestBuild_Empty(t *testing.T) {
	// WHAT: No builds yields nil, not an error.
	// WHY: First run of -stats must not fail.
	s := openTest(t)
	b, err := s.LatestBuild(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if b != nil {
		t.Errorf("latest = %+v, want nil", b)
	}
}

func TestBuildAssetsAndEdges(t *testing.T) {
	// WHAT: Assets and edges come back complete and ordered.
	// WHY: Reports must be deterministic.
	s := openTest(t)
	insertFixture(t, s, "bld_001")
	ctx := context.Background()

	assets, err := s.BuildAssets(ctx, "bld_001")
	if err != nil {
		t.Fatal(err)
	}
	if len(assets) != 2 || assets[0].Path != "/site/a.png" {
		t.Errorf("assets = %+v", assets)
	}

	edges, err := s.BuildEdges(ctx, "bld_001")
	if err != nil {
		t.Fatal(err)
	}
	if len(edges) != 3 || edges[0].FromPath != "/site/about.html" {
		t.Errorf("edges = %+v", edges)
	}
}

func TestDependents(t *testing.T) {
	// WHAT: Reverse lookup from asset to referencing documents.
	// WHY: "What breaks if this file changes" is the graph's main query.
	s := openTest(t)
	insertFixture(t, s, "bld_001")

	docs, err := s.Dependents(context.Background(), "bld_001", "/site/main.css")
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 2 || docs[0] != "/site/about.html" || docs[1] != "/site/index.html" {
		t.Errorf("dependents = %v", docs)
	}
}

func TestInsertBuild_DuplicateRollsBack(t *testing.T) {
	// WHAT: Inserting a duplicate build ID fails and leaves no partial rows.
	// WHY: The manifest write is transactional.
	s := openTest(t)
	insertFixture(t, s, "bld_001")

	err := s.InsertBuild(context.Background(),
		&Build{ID: "bld_001", Root: "/other"}, []Asset{{Path: "/x", HashedPath: "/y"}}, nil)
	if err == nil {
		t.Fatal("expected duplicate insert to fail")
	}

	var count int
	if err := s.DB.QueryRow(`SELECT COUNT(*) FROM build_assets WHERE path = '/x'`).Scan(&count); err != nil && err != sql.ErrNoRows {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("partial asset rows survived: %d", count)
	}
}
