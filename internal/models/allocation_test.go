package models_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/ledgerline/backend/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func (suite *TestSuiteStandard) TestAllocationMethod() {
	budget := suite.createTestBudget(models.Budget{
		Revenue: decimal.NewFromInt(1000),
	})

	tests := []struct {
		method models.AllocationMethod
		err    error
	}{
		{models.AllocationMethodFixed, nil},
		{models.AllocationMethodHistorical, nil},
		{"", nil},
		{"guesswork", models.ErrAllocationMethodInvalid},
	}

	for _, tt := range tests {
		suite.T().Run(string(tt.method), func(t *testing.T) {
			allocation := models.Allocation{
				BudgetID:    budget.ID,
				AccountCode: uuid.New().String(),
				Method:      tt.method,
				Amount:      decimal.NewFromInt(10),
			}

			err := models.DB.Create(&allocation).Error
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func (suite *TestSuiteStandard) TestAllocationPercentage() {
	budget := suite.createTestBudget(models.Budget{
		Revenue: decimal.NewFromInt(1000),
	})

	tests := []struct {
		name       string
		percentage decimal.Decimal
		err        error
	}{
		{"valid", decimal.NewFromInt(25), nil},
		{"zero", decimal.Zero, models.ErrAllocationPercentageInvalid},
		{"negative", decimal.NewFromInt(-10), models.ErrAllocationPercentageInvalid},
		{"above 100", decimal.NewFromInt(110), models.ErrAllocationPercentageInvalid},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			allocation := models.Allocation{
				BudgetID:    budget.ID,
				AccountCode: uuid.New().String(),
				Method:      models.AllocationMethodPercentage,
				Percentage:  tt.percentage,
			}

			err := models.DB.Create(&allocation).Error
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func (suite *TestSuiteStandard) TestAllocationOverCommitted() {
	budget := suite.createTestBudget(models.Budget{
		Revenue: decimal.NewFromInt(1000),
	})

	_ = suite.createTestAllocation(models.Allocation{
		BudgetID: budget.ID,
		Amount:   decimal.NewFromInt(600),
	})

	allocation := models.Allocation{
		BudgetID:    budget.ID,
		AccountCode: uuid.New().String(),
		Amount:      decimal.NewFromInt(500),
	}

	err := models.DB.Create(&allocation).Error
	assert.ErrorIs(suite.T(), err, models.ErrAllocationOverCommitted)

	// The full remainder is fine
	allocation.Amount = decimal.NewFromInt(400)
	err = models.DB.Create(&allocation).Error
	assert.Nil(suite.T(), err)
}

func (suite *TestSuiteStandard) TestAllocationSuperseded() {
	budget := suite.createTestBudget(models.Budget{
		Revenue: decimal.NewFromInt(1000),
	})

	allocation := suite.createTestAllocation(models.Allocation{
		BudgetID: budget.ID,
		Amount:   decimal.NewFromInt(100),
	})

	err := models.DB.Model(&allocation).Update("superseded", true).Error
	assert.Nil(suite.T(), err)

	err = models.DB.Model(&allocation).Select("Amount").Updates(models.Allocation{Amount: decimal.NewFromInt(200)}).Error
	assert.ErrorIs(suite.T(), err, models.ErrAllocationSuperseded)
}

func (suite *TestSuiteStandard) TestAllocationEffectiveAmount() {
	budget := models.Budget{
		Total: decimal.NewFromInt(1000),
	}

	fixed := models.Allocation{
		Method: models.AllocationMethodFixed,
		Amount: decimal.NewFromInt(300),
	}
	assert.True(suite.T(), fixed.EffectiveAmount(budget).Equal(decimal.NewFromInt(300)))

	percentage := models.Allocation{
		Method:     models.AllocationMethodPercentage,
		Percentage: decimal.NewFromInt(25),
	}
	assert.True(suite.T(), percentage.EffectiveAmount(budget).Equal(decimal.NewFromInt(250)))
}

func (suite *TestSuiteStandard) TestAllocationRatio() {
	budget := models.Budget{
		Total: decimal.NewFromInt(1000),
	}

	allocation := models.Allocation{
		Method:   models.AllocationMethodFixed,
		Amount:   decimal.NewFromInt(500),
		Consumed: decimal.NewFromInt(400),
	}
	assert.True(suite.T(), allocation.Ratio(budget).Equal(decimal.NewFromFloat(0.8)), "Ratio is wrong: should be 0.8, but is %s", allocation.Ratio(budget))

	// No allocated amount means no meaningful ratio
	empty := models.Allocation{}
	assert.True(suite.T(), empty.Ratio(budget).IsZero())
}

func (suite *TestSuiteStandard) TestAllocationPath() {
	root := suite.createTestBudget(models.Budget{Revenue: decimal.NewFromInt(1000)})
	child := suite.createTestBudget(models.Budget{Revenue: decimal.NewFromInt(500), ParentID: &root.ID})

	allocation := suite.createTestAllocation(models.Allocation{
		BudgetID: child.ID,
		Amount:   decimal.NewFromInt(100),
	})

	path, err := allocation.Path(models.DB)
	assert.Nil(suite.T(), err)

	if assert.Len(suite.T(), path, 2) {
		assert.Equal(suite.T(), root.ID, path[0].ID)
		assert.Equal(suite.T(), child.ID, path[1].ID)
	}
}

func (suite *TestSuiteStandard) TestAllocationBudgetNotFound() {
	allocation := models.Allocation{
		BudgetID:    uuid.New(),
		AccountCode: "7001",
		Amount:      decimal.NewFromInt(100),
	}

	err := models.DB.Create(&allocation).Error
	assert.ErrorIs(suite.T(), err, models.ErrResourceNotFound)
}
