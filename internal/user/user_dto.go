package user

type ValidatorOption struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	RoleLabel string `json:"role_label"`
}

type NextValidatorsResponse struct {
	Role       string            `json:"role"`
	RoleLabel  string            `json:"role_label"`
	Validators []ValidatorOption `json:"validators"`
}

type HierarchyStep struct {
	Position int    `json:"position"`
	Role     string `json:"role"`
	Label    string `json:"label"`
	Next     string `json:"next,omitempty"`
}
