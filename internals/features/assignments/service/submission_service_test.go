package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"district_platform/internals/apperr"
	asgDTO "district_platform/internals/features/assignments/dto"
	"district_platform/internals/features/assignments/model"
	templateDTO "district_platform/internals/features/forms/templates/dto"
)

func TestSaveValuesUpsertsWithoutValidatingFieldMembership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	uid := f.createDistrictUser(t, "akola", "Akola")
	tplID := f.createPublishedTemplate(t, "Crop Report", "Crop Name", "Remarks")
	require.NoError(t, f.asg.Assign(ctx, tplID, []int64{uid}))
	asgID := f.assignments(t)[0].ID

	err := f.asg.SaveValues(ctx, asgID, uid, []asgDTO.ValueInput{
		{FieldKey: "crop_name", Value: "Soybean"},
		{FieldKey: "extra_key", Value: "kept"},
		{FieldKey: "", Value: "no key, no row"},
		{FieldKey: "remarks", Value: 42.0},
	})
	require.NoError(t, err)

	vals := f.values(t)
	require.Len(t, vals, 3, "unknown keys are stored, empty keys are not")
	byKey := map[string]string{}
	for _, v := range vals {
		assert.Greater(t, v.ID, int64(0), "rows created on save get ids too")
		byKey[v.FieldKey] = v.Value
	}
	assert.Equal(t, "Soybean", byKey["crop_name"])
	assert.Equal(t, "kept", byKey["extra_key"], "membership is not checked on write")
	assert.Equal(t, "42", byKey["remarks"], "numeric input is coerced to text")

	// second save overwrites in place
	require.NoError(t, f.asg.SaveValues(ctx, asgID, uid, []asgDTO.ValueInput{
		{FieldKey: "crop_name", Value: "Cotton"},
	}))
	require.Len(t, f.values(t), 3)
}

func TestSaveValuesKeepsValueForFieldDeletedMidEdit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	uid := f.createDistrictUser(t, "akola", "Akola")
	tplID := f.createPublishedTemplate(t, "Crop Report", "Crop Name", "Remarks")
	require.NoError(t, f.asg.Assign(ctx, tplID, []int64{uid}))
	asgID := f.assignments(t)[0].ID

	// admin deletes a field while the district has the form open
	detail, err := f.templates.GetTemplateDetail(ctx, tplID)
	require.NoError(t, err)
	for _, fld := range detail.Fields {
		if fld.FieldKey == "remarks" {
			require.NoError(t, f.templates.DeleteField(ctx, fld.ID))
		}
	}

	require.NoError(t, f.asg.SaveValues(ctx, asgID, uid, []asgDTO.ValueInput{
		{FieldKey: "remarks", Value: "late frost in the north"},
	}))

	byKey := map[string]string{}
	for _, v := range f.values(t) {
		byKey[v.FieldKey] = v.Value
	}
	assert.Equal(t, "late frost in the north", byKey["remarks"], "stale keys keep their data")

	// the stale row no longer renders in field-driven views
	sub, err := f.asg.GetSubmissionDetail(ctx, asgID)
	require.NoError(t, err)
	require.Len(t, sub.Values, 1)
	assert.Equal(t, "crop_name", sub.Values[0].FieldKey)
}

func TestSaveValuesOtherDistrictReadsAsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	owner := f.createDistrictUser(t, "akola", "Akola")
	intruder := f.createDistrictUser(t, "washim", "Washim")
	tplID := f.createPublishedTemplate(t, "Crop Report", "Crop Name")
	require.NoError(t, f.asg.Assign(ctx, tplID, []int64{owner}))
	asgID := f.assignments(t)[0].ID

	err := f.asg.SaveValues(ctx, asgID, intruder, []asgDTO.ValueInput{{FieldKey: "crop_name", Value: "x"}})
	kind, ok := apperr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindNotFound, kind, "ownership failures are indistinguishable from absence")
}

func TestSaveValuesRejectedOnSentAssignment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	uid := f.createDistrictUser(t, "akola", "Akola")
	tplID := f.createPublishedTemplate(t, "Crop Report", "Crop Name")
	require.NoError(t, f.asg.Assign(ctx, tplID, []int64{uid}))
	asgID := f.assignments(t)[0].ID

	_, err := f.asg.Send(ctx, asgID, uid)
	require.NoError(t, err)

	err = f.asg.SaveValues(ctx, asgID, uid, []asgDTO.ValueInput{{FieldKey: "crop_name", Value: "late edit"}})
	kind, ok := apperr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindInvalidState, kind)
}

func TestSendGatesOnRequiredFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	uid := f.createDistrictUser(t, "akola", "Akola")
	tplID, err := f.templates.CreateTemplate(ctx, "Crop Report", 1)
	require.NoError(t, err)
	require.NoError(t, f.templates.AddField(ctx, tplID, templateDTO.AddFieldRequest{Label: "Crop Name", Required: true}))
	require.NoError(t, f.templates.AddField(ctx, tplID, templateDTO.AddFieldRequest{Label: "Total Area (ha)", Required: true}))
	require.NoError(t, f.templates.AddField(ctx, tplID, templateDTO.AddFieldRequest{Label: "Remarks"}))
	require.NoError(t, f.templates.PublishTemplate(ctx, tplID))
	require.NoError(t, f.asg.Assign(ctx, tplID, []int64{uid}))
	asgID := f.assignments(t)[0].ID

	// whitespace does not satisfy a required field
	require.NoError(t, f.asg.SaveValues(ctx, asgID, uid, []asgDTO.ValueInput{
		{FieldKey: "crop_name", Value: "   "},
	}))

	_, err = f.asg.Send(ctx, asgID, uid)
	kind, ok := apperr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindValidation, kind)
	assert.True(t, strings.Contains(err.Error(), "Crop Name"), "message names missing labels: %v", err)
	assert.True(t, strings.Contains(err.Error(), "Total Area (ha)"), "got %v", err)
	assert.False(t, strings.Contains(err.Error(), "Remarks"), "optional fields stay out of the gate")

	// a failed send leaves the assignment untouched
	asg := f.assignments(t)[0]
	assert.Equal(t, model.StatusDraft, asg.Status)
	assert.Nil(t, asg.SentAt)
}

func TestSendFlipsToSentAndReturnsPayload(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	uid := f.createDistrictUser(t, "akola", "Akola / अकोला")
	tplID := f.createPublishedTemplate(t, "Crop Report", "Crop Name", "Remarks")
	require.NoError(t, f.asg.Assign(ctx, tplID, []int64{uid}))
	asgID := f.assignments(t)[0].ID

	require.NoError(t, f.asg.SaveValues(ctx, asgID, uid, []asgDTO.ValueInput{
		{FieldKey: "crop_name", Value: "Soybean"},
	}))

	result, err := f.asg.Send(ctx, asgID, uid)
	require.NoError(t, err)
	assert.Equal(t, "Akola / अकोला", result.DistrictName)
	assert.Equal(t, "Crop Report", result.TemplateName)
	require.Len(t, result.Rows, 2, "payload carries every field in template order")
	assert.Equal(t, "Crop Name", result.Rows[0].Label)
	assert.Equal(t, "Soybean", result.Rows[0].Value)
	assert.Equal(t, "", result.Rows[1].Value)

	asg := f.assignments(t)[0]
	assert.Equal(t, model.StatusSent, asg.Status)
	require.NotNil(t, asg.SentAt)

	// second send is rejected
	_, err = f.asg.Send(ctx, asgID, uid)
	kind, ok := apperr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindInvalidState, kind)
}

func TestSendPayloadTrimsWhitespacePadding(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	uid := f.createDistrictUser(t, "akola", "Akola")
	tplID := f.createPublishedTemplate(t, "Crop Report", "Crop Name")
	require.NoError(t, f.asg.Assign(ctx, tplID, []int64{uid}))
	asgID := f.assignments(t)[0].ID

	require.NoError(t, f.asg.SaveValues(ctx, asgID, uid, []asgDTO.ValueInput{
		{FieldKey: "crop_name", Value: "  Soybean\t"},
	}))

	result, err := f.asg.Send(ctx, asgID, uid)
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "Soybean", result.Rows[0].Value, "padding never reaches the email or export")

	detail, err := f.asg.GetSubmissionDetail(ctx, asgID)
	require.NoError(t, err)
	assert.Equal(t, "Soybean", detail.Values[0].Value)
}

func TestUnlockReturnsSentAssignmentToDraft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	uid := f.createDistrictUser(t, "akola", "Akola")
	tplID := f.createPublishedTemplate(t, "Crop Report", "Crop Name")
	require.NoError(t, f.asg.Assign(ctx, tplID, []int64{uid}))
	asgID := f.assignments(t)[0].ID

	_, err := f.asg.Send(ctx, asgID, uid)
	require.NoError(t, err)
	require.NoError(t, f.asg.Unlock(ctx, asgID))

	asg := f.assignments(t)[0]
	assert.Equal(t, model.StatusDraft, asg.Status)
	assert.Nil(t, asg.SentAt)

	// the district can edit and send again
	require.NoError(t, f.asg.SaveValues(ctx, asgID, uid, []asgDTO.ValueInput{
		{FieldKey: "crop_name", Value: "Wheat"},
	}))
	_, err = f.asg.Send(ctx, asgID, uid)
	require.NoError(t, err)
}

func TestListSubmissionsJoinsTemplateAndDistrict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	uid := f.createDistrictUser(t, "akola", "Akola / अकोला")
	tplID := f.createPublishedTemplate(t, "Crop Report", "Crop Name")
	require.NoError(t, f.asg.Assign(ctx, tplID, []int64{uid}))

	rows, err := f.asg.ListSubmissions(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Crop Report", rows[0].TemplateName)
	assert.Equal(t, "akola", rows[0].DistrictUsername)
	assert.Equal(t, "Akola / अकोला", rows[0].DistrictName)
	assert.Equal(t, model.StatusDraft, rows[0].Status)
}

func TestDistrictAssignmentViewsAreTenantScoped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	akola := f.createDistrictUser(t, "akola", "Akola")
	washim := f.createDistrictUser(t, "washim", "Washim")
	tplID := f.createPublishedTemplate(t, "Crop Report", "Crop Name")
	require.NoError(t, f.asg.Assign(ctx, tplID, []int64{akola, washim}))

	mine, err := f.asg.ListDistrictAssignments(ctx, akola)
	require.NoError(t, err)
	require.Len(t, mine, 1)

	detail, err := f.asg.GetDistrictAssignmentDetail(ctx, mine[0].ID, akola)
	require.NoError(t, err)
	assert.Equal(t, "Crop Report", detail.TemplateName)
	require.Len(t, detail.Fields, 1)
	assert.Equal(t, "crop_name", detail.Fields[0].FieldKey)

	_, err = f.asg.GetDistrictAssignmentDetail(ctx, mine[0].ID, washim)
	kind, ok := apperr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindNotFound, kind)
}

func TestSubmissionDetailRendersBlanksForUnsavedFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	uid := f.createDistrictUser(t, "akola", "Akola")
	tplID := f.createPublishedTemplate(t, "Crop Report", "Crop Name", "Remarks")
	require.NoError(t, f.asg.Assign(ctx, tplID, []int64{uid}))
	asgID := f.assignments(t)[0].ID

	detail, err := f.asg.GetSubmissionDetail(ctx, asgID)
	require.NoError(t, err)
	require.Len(t, detail.Values, 2)
	for _, row := range detail.Values {
		assert.Equal(t, "", row.Value)
	}
}
