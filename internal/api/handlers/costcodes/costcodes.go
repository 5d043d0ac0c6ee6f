package costcodes

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"sitebooks/internal/models"
	"sitebooks/internal/reconcile"
	"sitebooks/internal/repositories/sqlconnect"
	"sitebooks/pkg/utils"
)

// FUNC TO GET ALL COST CODE TEMPLATES FOR A COMPANY
func GetCostCodeTemplatesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.WriteError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	db := sqlconnect.DB
	if db == nil {
		utils.Logger.Error("DB is not initialized")
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	idStr := r.PathValue("company_id")
	companyID, err := strconv.Atoi(idStr)
	if err != nil {
		utils.WriteError(w, "invalid company ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	rows, err := db.QueryContext(ctx, `
		SELECT id, company_id, code, description, type_tag, attachment_required, created_at, updated_at
		FROM cost_code_templates
		WHERE company_id = ?
		ORDER BY code, id
	`, companyID)
	if err != nil {
		utils.Logger.Errorf("error fetching cost code templates: %v", err)
		utils.WriteError(w, "error fetching cost code templates", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	var templates []models.CostCodeTemplate
	for rows.Next() {
		var t models.CostCodeTemplate
		err = rows.Scan(&t.ID, &t.CompanyID, &t.Code, &t.Description, &t.TypeTag, &t.AttachmentRequired, &t.CreatedAt, &t.UpdatedAt)
		if err != nil {
			utils.Logger.Errorf("error reading cost code templates: %v", err)
			utils.WriteError(w, "error reading cost code templates", http.StatusInternalServerError)
			return
		}
		templates = append(templates, t)
	}

	if err = rows.Err(); err != nil {
		utils.WriteError(w, "error finalizing cost code templates read", http.StatusInternalServerError)
		return
	}

	response := struct {
		Status string                    `json:"status"`
		Count  int                       `json:"count"`
		Data   []models.CostCodeTemplate `json:"data"`
	}{
		Status: "success",
		Count:  len(templates),
		Data:   templates,
	}

	utils.WriteJSON(w, response)
}

type templateRequest struct {
	CompanyID   int    `json:"company_id"`
	Code        string `json:"code"`
	Description string `json:"description"`
	TypeTag     string `json:"type_tag"`
	// Pointer so an absent field stays NULL rather than becoming FALSE.
	AttachmentRequired *bool `json:"attachment_required"`
}

// FUNC TO CREATE A COST CODE TEMPLATE
func CreateCostCodeTemplateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	db := sqlconnect.DB
	if db == nil {
		utils.Logger.Error("DB is not initialized")
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var req templateRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if req.CompanyID == 0 || req.Code == "" {
		utils.WriteError(w, "company_id and code are required", http.StatusBadRequest)
		return
	}
	if reconcile.NormalizeCode(req.Code) == "" {
		utils.WriteError(w, "code must contain at least one digit", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	typeTag := sql.NullString{String: req.TypeTag, Valid: req.TypeTag != ""}
	attachmentRequired := sql.NullBool{}
	if req.AttachmentRequired != nil {
		attachmentRequired = sql.NullBool{Bool: *req.AttachmentRequired, Valid: true}
	}

	res, err := db.ExecContext(ctx, `
		INSERT INTO cost_code_templates (company_id, code, description, type_tag, attachment_required, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, req.CompanyID, req.Code, req.Description, typeTag, attachmentRequired, time.Now().Format("2006-01-02 15:04:05"))
	if err != nil {
		utils.Logger.Errorf("failed to create cost code template: %v", err)
		utils.WriteError(w, "failed to create cost code template", http.StatusInternalServerError)
		return
	}

	templateID, _ := res.LastInsertId()

	utils.WriteJSON(w, map[string]interface{}{
		"status":  "success",
		"message": "cost code template created",
		"data": map[string]interface{}{
			"template_id": templateID,
		},
	})
}

// FUNC TO UPDATE A COST CODE TEMPLATE
func UpdateCostCodeTemplateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	db := sqlconnect.DB
	if db == nil {
		utils.Logger.Error("DB is not initialized")
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	idStr := r.PathValue("id")
	templateID, err := strconv.Atoi(idStr)
	if err != nil {
		utils.WriteError(w, "invalid template ID", http.StatusBadRequest)
		return
	}

	var req templateRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if req.Code == "" {
		utils.WriteError(w, "code is required", http.StatusBadRequest)
		return
	}
	if reconcile.NormalizeCode(req.Code) == "" {
		utils.WriteError(w, "code must contain at least one digit", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	typeTag := sql.NullString{String: req.TypeTag, Valid: req.TypeTag != ""}
	attachmentRequired := sql.NullBool{}
	if req.AttachmentRequired != nil {
		attachmentRequired = sql.NullBool{Bool: *req.AttachmentRequired, Valid: true}
	}

	res, err := db.ExecContext(ctx, `
		UPDATE cost_code_templates
		SET code = ?, description = ?, type_tag = ?, attachment_required = ?, updated_at = ?
		WHERE id = ?
	`, req.Code, req.Description, typeTag, attachmentRequired, time.Now().Format("2006-01-02 15:04:05"), templateID)
	if err != nil {
		utils.Logger.Errorf("failed to update cost code template: %v", err)
		utils.WriteError(w, "failed to update cost code template", http.StatusInternalServerError)
		return
	}

	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		utils.WriteError(w, "cost code template not found", http.StatusNotFound)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status":  "success",
		"message": "cost code template updated",
	})
}

// FUNC TO DELETE A COST CODE TEMPLATE
func DeleteCostCodeTemplateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	db := sqlconnect.DB
	if db == nil {
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	idStr := r.PathValue("id")
	templateID, err := strconv.Atoi(idStr)
	if err != nil {
		utils.WriteError(w, "invalid template ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := db.ExecContext(ctx, "DELETE FROM cost_code_templates WHERE id = ?", templateID)
	if err != nil {
		utils.Logger.Errorf("error deleting cost code template: %v", err)
		utils.WriteError(w, "error deleting cost code template", http.StatusInternalServerError)
		return
	}

	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		utils.WriteError(w, "cost code template not found or already deleted", http.StatusNotFound)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status":  "success",
		"message": "cost code template deleted successfully",
	})
}
