package model

// RecyclableMaterial is a catalog entry describing a material type the
// platform accepts (e.g. glass, PET plastic).  The catalog is maintained
// by admins and referenced by pickup request line items.
type RecyclableMaterial struct {
	ID          string // recyclable_materials.id
	Type        string // recyclable_materials.type
	Description string // recyclable_materials.description
}
