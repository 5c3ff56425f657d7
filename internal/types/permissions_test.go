package types

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestGroupCapabilities(t *testing.T) {
	owner := uuid.New()
	editor := uuid.New()
	reader := uuid.New()
	outsider := uuid.New()

	group := &Group{
		ID:      uuid.New(),
		OwnerID: owner,
		Members: []GroupMember{
			{UserID: editor, CanAdd: true, CanEdit: true, CanDelete: true},
			{UserID: reader},
		},
	}

	if !group.Has(owner) || !group.Has(editor) || !group.Has(reader) {
		t.Fatal("owner and members should be recognized")
	}
	if group.Has(outsider) {
		t.Fatal("outsider should not be recognized")
	}

	if ok, err := group.CanEdit(owner); err != nil || !ok {
		t.Fatalf("owner CanEdit = %v, %v", ok, err)
	}
	if ok, err := group.CanDelete(editor); err != nil || !ok {
		t.Fatalf("editor CanDelete = %v, %v", ok, err)
	}
	if ok, err := group.CanEdit(reader); err != nil || ok {
		t.Fatalf("reader CanEdit = %v, %v", ok, err)
	}
	if _, err := group.CanAdd(outsider); !errors.Is(err, ErrNotMember) {
		t.Fatalf("expected ErrNotMember, got %v", err)
	}
}

func TestLibraryCanView(t *testing.T) {
	owner := uuid.New()
	member := uuid.New()
	stranger := uuid.New()

	public := &Library{OwnerID: owner, Private: false}
	if ok, err := public.CanView(stranger); err != nil || !ok {
		t.Fatalf("public library should be visible to anyone: %v, %v", ok, err)
	}

	personal := &Library{OwnerID: owner, Private: true}
	if ok, _ := personal.CanView(owner); !ok {
		t.Fatal("owner should see a private library")
	}
	if ok, err := personal.CanView(stranger); err != nil || ok {
		t.Fatalf("stranger should not see a private library: %v, %v", ok, err)
	}

	groupID := uuid.New()
	shared := &Library{
		OwnerID: owner,
		Private: true,
		GroupID: &groupID,
		Group: &Group{
			ID:      groupID,
			OwnerID: owner,
			Members: []GroupMember{{UserID: member}},
		},
	}
	if ok, _ := shared.CanView(member); !ok {
		t.Fatal("group member should see a shared library")
	}
	if ok, err := shared.CanView(stranger); err != nil || ok {
		t.Fatalf("non-member should not see a shared library: %v, %v", ok, err)
	}
}

func TestLibraryUnpopulatedGroup(t *testing.T) {
	groupID := uuid.New()
	library := &Library{OwnerID: uuid.New(), Private: true, GroupID: &groupID}

	if _, err := library.CanView(uuid.New()); !errors.Is(err, ErrGroupNotPopulated) {
		t.Fatalf("expected ErrGroupNotPopulated, got %v", err)
	}
	if _, err := library.CanEdit(uuid.New()); !errors.Is(err, ErrGroupNotPopulated) {
		t.Fatalf("expected ErrGroupNotPopulated, got %v", err)
	}
}

func TestLibraryCapabilityDelegation(t *testing.T) {
	owner := uuid.New()
	adder := uuid.New()
	groupID := uuid.New()

	library := &Library{
		OwnerID: owner,
		Private: true,
		GroupID: &groupID,
		Group: &Group{
			ID:      groupID,
			OwnerID: uuid.New(),
			Members: []GroupMember{{UserID: adder, CanAdd: true}},
		},
	}

	// Library owner bypasses group capabilities entirely.
	if ok, err := library.CanDelete(owner); err != nil || !ok {
		t.Fatalf("owner CanDelete = %v, %v", ok, err)
	}
	if ok, err := library.CanAdd(adder); err != nil || !ok {
		t.Fatalf("adder CanAdd = %v, %v", ok, err)
	}
	if ok, err := library.CanEdit(adder); err != nil || ok {
		t.Fatalf("adder CanEdit = %v, %v", ok, err)
	}
}

func TestChildPermissionChain(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()

	library := &Library{OwnerID: owner, Private: true}
	collection := &Collection{Parent: library}
	item := &Item{Parent: collection}
	attachment := &Attachment{Parent: item}

	if ok, _ := attachment.CanView(owner); !ok {
		t.Fatal("owner should see the attachment through the chain")
	}
	if ok, err := attachment.CanView(stranger); err != nil || ok {
		t.Fatalf("stranger view = %v, %v", ok, err)
	}

	if _, err := (&Item{}).CanView(owner); err == nil {
		t.Fatal("unpopulated item parent should error")
	}
	if _, err := (&Attachment{Parent: &Item{}}).CanEdit(owner); err == nil {
		t.Fatal("chain with unpopulated link should error")
	}
}

func TestNotePermissions(t *testing.T) {
	owner := uuid.New()
	library := &Library{OwnerID: owner, Private: true}
	collection := &Collection{Parent: library}
	item := &Item{Parent: collection}

	itemNote := &Note{ParentKind: NoteParentItem, ParentItem: item}
	if ok, _ := itemNote.CanView(owner); !ok {
		t.Fatal("owner should see the item note")
	}

	collectionNote := &Note{ParentKind: NoteParentCollection, ParentCollection: collection}
	if ok, _ := collectionNote.CanEdit(owner); !ok {
		t.Fatal("owner should edit the collection note")
	}

	orphan := &Note{ParentKind: NoteParentItem}
	if _, err := orphan.CanView(owner); err == nil {
		t.Fatal("note without populated parent should error")
	}
	if _, err := (&Note{ParentKind: "bogus"}).CanView(owner); err == nil {
		t.Fatal("unknown parent kind should error")
	}
}
